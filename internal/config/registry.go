// Package config maintains a registry of known configuration keys with
// metadata, and helpers for loading configuration from files and the
// environment.
package config

import (
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// KeyInfo contains metadata about a known configuration key.
type KeyInfo struct {
	Key         string      // The full config key path (e.g., "catalog.file")
	Description string      // Human-readable description of what this config does
	Type        string      // Type hint: "string", "int", "bool", "[]string", etc.
	Default     interface{} // Optional default value
}

// registry holds all known configuration keys.
var (
	registry   = make(map[string]KeyInfo)
	registryMu sync.RWMutex
)

// RegisterKey registers a known configuration key with metadata. This should
// be called by packages to document expected config keys.
func RegisterKey(info KeyInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[info.Key] = info
}

// RegisterKeys registers multiple configuration keys at once.
func RegisterKeys(infos ...KeyInfo) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, info := range infos {
		registry[info.Key] = info
	}
}

// IsRegisteredKey checks if a config key is known in the registry.
func IsRegisteredKey(key string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, exists := registry[key]
	return exists
}

// LookupKey returns metadata for a registered config key.
func LookupKey(key string) (KeyInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, exists := registry[key]
	return info, exists
}

// AllRegisteredKeys returns all registered config keys sorted alphabetically.
func AllRegisteredKeys() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults returns a map of all registered config keys with their default
// values. Only keys that have a non-nil Default value are included.
func Defaults() map[string]interface{} {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defaults := make(map[string]interface{})
	for key, info := range registry {
		if info.Default != nil {
			defaults[key] = info.Default
		}
	}
	return defaults
}

// SimilarKeys finds registered keys that are similar to the given key,
// returning up to maxResults sorted by edit distance (most similar first).
// Keys in the same namespace get a one-point bonus so that typos within a
// section rank above coincidental matches elsewhere.
func SimilarKeys(key string, maxResults int) []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	type scored struct {
		key   string
		score int // Lower is better.
	}

	var candidates []scored
	keyPrefix := keyNamespace(key)

	for registeredKey := range registry {
		distance := levenshtein.ComputeDistance(key, registeredKey)
		if keyPrefix != "" && keyPrefix == keyNamespace(registeredKey) && distance > 0 {
			distance--
		}
		if distance <= 3 {
			candidates = append(candidates, scored{registeredKey, distance})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].key < candidates[j].key
	})

	result := make([]string, 0, maxResults)
	for i := 0; i < len(candidates) && i < maxResults; i++ {
		result = append(result, candidates[i].key)
	}
	return result
}

// keyNamespace extracts the namespace of a hierarchical key. For
// "catalog.levels.custom", returns "catalog.levels".
func keyNamespace(key string) string {
	lastDot := strings.LastIndex(key, ".")
	if lastDot == -1 {
		return ""
	}
	return key[:lastDot]
}
