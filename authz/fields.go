package authz

import "sort"

// Record is a content entry as a flat field map, as decoded from the content
// store or an inbound request body.
type Record map[string]any

// HasFieldAccess reports whether the effective permission set allows the
// action on one named field of a content type. Resolution is most-specific
// first:
//
//  1. a field-scoped permission for exactly this field
//  2. a content-type-scoped permission, provided no field-scoped permissions
//     exist for the same (resource, action, content type)
//  3. a global permission, under the same proviso
//
// Step 2's proviso is the narrowing rule: once any field-scoped permission
// exists for a (resource, action, content type), the field allow-list is
// authoritative and broader grants no longer spill onto unlisted fields.
func HasFieldAccess(effective PermissionSet, contentType, field string, action Action) bool {
	return hasScopedAccess(effective, ResourceContent, contentType, field, action)
}

func hasScopedAccess(effective PermissionSet, resource Resource, contentType, field string, action Action) bool {
	if effective.Contains(Permission{Resource: resource, Action: action, ContentType: contentType, Field: field}) {
		return true
	}
	if hasFieldAllowList(effective, resource, action, contentType) {
		return false
	}
	if effective.Contains(Permission{Resource: resource, Action: action, ContentType: contentType}) {
		return true
	}
	return effective.Contains(Permission{Resource: resource, Action: action})
}

// hasFieldAllowList reports whether any field-scoped permission exists for
// the given (resource, action, content type).
func hasFieldAllowList(effective PermissionSet, resource Resource, action Action, contentType string) bool {
	for p := range effective {
		if p.Resource == resource && p.Action == action && p.ContentType == contentType && p.Field != "" {
			return true
		}
	}
	return false
}

// AccessibleFields filters candidate field names down to those the effective
// set allows for the action on the content type. Candidates typically come
// from the record being filtered or from the content-type schema; the engine
// never invents field names of its own.
func AccessibleFields(effective PermissionSet, contentType string, action Action, candidates []string) []string {
	var out []string
	for _, f := range candidates {
		if HasFieldAccess(effective, contentType, f, action) {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// FilterRecord returns a copy of the record holding only the accessible
// fields. The input record is never mutated, and no keys are invented: the
// result is always a subset of the input.
func FilterRecord(record Record, accessible []string) Record {
	allowed := make(map[string]bool, len(accessible))
	for _, f := range accessible {
		allowed[f] = true
	}
	out := make(Record, len(record))
	for k, v := range record {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}
