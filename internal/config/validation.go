package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

// ValidationWarning flags a loaded configuration key that is not in the
// registry, with the closest registered keys offered as suggestions.
type ValidationWarning struct {
	Key         string
	Suggestions []string
}

func (w ValidationWarning) String() string {
	msg := fmt.Sprintf("%q is not a known config key", w.Key)
	switch len(w.Suggestions) {
	case 0:
		return msg
	case 1:
		return msg + fmt.Sprintf(", did you mean %q?", w.Suggestions[0])
	default:
		return msg + ", did you mean one of: " + strings.Join(w.Suggestions, ", ") + "?"
	}
}

// ValidateKeys checks every loaded key against the registry and returns a
// warning for each unknown one. Keys under a registered namespace prefix are
// accepted, so map-valued keys like "catalog.levels" cover their sub-keys and
// hosts can register a prefix instead of every leaf.
func ValidateKeys(k *koanf.Koanf) []ValidationWarning {
	var warnings []ValidationWarning
	for _, key := range k.Keys() {
		if IsRegisteredKey(key) || hasRegisteredPrefix(key) {
			continue
		}
		warnings = append(warnings, ValidationWarning{
			Key:         key,
			Suggestions: SimilarKeys(key, 3),
		})
	}
	return warnings
}

// hasRegisteredPrefix reports whether any registered key is a dotted prefix
// of the given key.
func hasRegisteredPrefix(key string) bool {
	parts := strings.Split(key, ".")
	for i := len(parts) - 1; i > 0; i-- {
		if IsRegisteredKey(strings.Join(parts[:i], ".")) {
			return true
		}
	}
	return false
}
