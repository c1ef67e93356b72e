// Package authz implements the multi-tenant permission-hierarchy engine used
// by the content API. It expands granted permissions through a directed
// implication graph, enforces the numeric role-level hierarchy used for role
// management, and resolves field-level access masks over content records.
//
// The engine is pure computation over in-memory snapshots: hosts load the
// permission catalog once at startup, build an ephemeral principal Snapshot
// per request, and ask the Engine for decisions. Denied checks are ordinary
// `false` returns; only catalog/caller mismatches (unknown actions, cyclic
// edges, invalid levels) surface as errors.
//
// A typical host wires the engine like so:
//
//	catalog, err := authz.CatalogFromConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine := authz.New(authz.WithCatalog(catalog))
//
//	ok, err := engine.HasPermission(ctx, snap, authz.Permission{
//	    Resource: authz.ResourceContent,
//	    Action:   authz.ActionRead,
//	})
package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"google.golang.org/grpc/codes"
)

// Resource identifies a class of objects that permissions apply to, e.g.
// "content" or "media".
type Resource string

// Action identifies an operation on a resource, e.g. "read" or "publish".
type Action string

// Permission identifies an operation on a resource, optionally narrowed to a
// content type, and further to a single named field within that type.
//
// Scoping is a narrowing, never an extension: a field-scoped permission grants
// access to that one field only, and does not structurally imply its
// content-type-wide or global counterparts.
type Permission struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`

	// ContentType narrows the permission to entries of one content type.
	// Empty means the permission applies to the resource globally.
	ContentType string `json:"contentType,omitempty"`

	// Field narrows the permission to a single named field. Requires
	// ContentType to be set.
	Field string `json:"field,omitempty"`
}

// String renders the permission in "resource.action" form, with any scoping
// appended in brackets.
func (p Permission) String() string {
	s := fmt.Sprintf("%s.%s", p.Resource, p.Action)
	if p.Field != "" {
		return fmt.Sprintf("%s[%s:%s]", s, p.ContentType, p.Field)
	}
	if p.ContentType != "" {
		return fmt.Sprintf("%s[%s]", s, p.ContentType)
	}
	return s
}

// Global returns the permission stripped of content-type and field scoping.
func (p Permission) Global() Permission {
	return Permission{Resource: p.Resource, Action: p.Action}
}

// IsGlobal reports whether the permission carries no scoping.
func (p Permission) IsGlobal() bool {
	return p.ContentType == "" && p.Field == ""
}

// IsFieldScoped reports whether the permission is narrowed to a single field.
func (p Permission) IsFieldScoped() bool {
	return p.Field != ""
}

// Validate checks the structural shape of the permission. Field scoping
// without a content type is rejected; resolution order has no rung for it.
func (p Permission) Validate() error {
	if p.Resource == "" || p.Action == "" {
		return errors.Codef(codes.InvalidArgument, "authz: permission requires resource and action, got %q", p.String())
	}
	if p.Field != "" && p.ContentType == "" {
		return errors.Codef(codes.InvalidArgument, "authz: field-scoped permission %q requires a content type", p.String())
	}
	return nil
}

// ParsePermission parses a "resource.action" identifier into a Permission.
// Used at configuration boundaries; decision-time APIs take the struct form.
func ParsePermission(s string) (Permission, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Permission{}, errors.Codef(codes.InvalidArgument, "authz: malformed permission %q, want \"resource.action\"", s)
	}
	return Permission{Resource: Resource(parts[0]), Action: Action(parts[1])}, nil
}

// PermissionSet is an unordered collection of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet returns a set containing the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts a permission into the set.
func (s PermissionSet) Add(p Permission) {
	s[p] = struct{}{}
}

// Contains reports whether the exact permission, including scoping, is
// present.
func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s[p]
	return ok
}

// AddAll inserts every permission from other into the set.
func (s PermissionSet) AddAll(other PermissionSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Clone returns an independent copy of the set.
func (s PermissionSet) Clone() PermissionSet {
	c := make(PermissionSet, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Slice returns the permissions sorted by their string form, for stable
// logging and test output.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
