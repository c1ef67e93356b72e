package authz

import (
	"strconv"
	"strings"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"google.golang.org/grpc/codes"
)

// Level is the numeric rank used to gate who may assign or modify which
// roles. Levels order role management only; permission implication is decided
// solely by the implication graph, and the two hierarchies are independent.
type Level int

// Named levels for the system role templates.
const (
	LevelViewer      Level = 20
	LevelContributor Level = 40
	LevelEditor      Level = 60
	LevelAdmin       Level = 80
	LevelOrgAdmin    Level = 90
	LevelSuperAdmin  Level = 100
)

// Bounds for custom role levels. Level 100 is reserved for the system
// super-admin template and can never be claimed by a custom role.
const (
	MinCustomLevel Level = 1
	MaxCustomLevel Level = 99
)

// DefaultSuggestedLevel is returned by SuggestLevel when no name pattern
// matches.
const DefaultSuggestedLevel Level = 30

// CanManage reports whether a principal at managerLevel may assign or modify
// a role at targetLevel. The comparison is strictly greater-than: a manager
// can never touch a role at their own level or above, including their own.
func CanManage(managerLevel, targetLevel Level) bool {
	return managerLevel > targetLevel
}

// ValidateCustomLevel checks that a level is usable for a non-system role.
func ValidateCustomLevel(level Level) error {
	if level < MinCustomLevel || level > MaxCustomLevel {
		return errors.Codef(codes.FailedPrecondition,
			"authz: custom role level %d outside %d..%d (level %d is reserved)",
			level, MinCustomLevel, MaxCustomLevel, LevelSuperAdmin)
	}
	return nil
}

// ParseLevel parses a decimal level and range-checks it against 0..100.
func ParseLevel(s string) (Level, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Codef(codes.FailedPrecondition, "authz: malformed level %q", s)
	}
	if n < 0 || n > int(LevelSuperAdmin) {
		return 0, errors.Codef(codes.FailedPrecondition, "authz: level %d outside 0..%d", n, LevelSuperAdmin)
	}
	return Level(n), nil
}

// levelRule maps a role-name substring onto a suggested level. Rules are
// evaluated in order; the first match wins.
type levelRule struct {
	substring string
	level     Level
}

var levelRules = []levelRule{
	{"admin", LevelAdmin},
	{"editor", LevelEditor},
	{"contributor", LevelContributor},
	{"author", LevelContributor},
	{"viewer", LevelViewer},
	{"read", LevelViewer},
}

// SuggestLevel proposes a level for a role based on its name, by
// case-insensitive substring matching against common role names. The result
// is advisory only: callers that supply an explicit level are never
// overridden.
//
//	SuggestLevel("Senior Content Editor") == LevelEditor
//	SuggestLevel("Bookkeeper") == DefaultSuggestedLevel
func SuggestLevel(roleName string) Level {
	name := strings.ToLower(roleName)
	for _, rule := range levelRules {
		if strings.Contains(name, rule.substring) {
			return rule.level
		}
	}
	return DefaultSuggestedLevel
}
