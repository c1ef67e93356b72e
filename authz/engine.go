package authz

import (
	"context"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/bsakweson/bakalr-cms-sub001/logging"
)

// RoleGrant is one role held by the principal, flattened to what decisions
// need: the role's name, its level, and the permissions it grants.
type RoleGrant struct {
	Name        string
	Level       Level
	Permissions []Permission
}

// Snapshot is the per-request view of a principal: the organization being
// acted in, the roles held there, and any direct permission overrides.
// Snapshots are ephemeral; hosts rebuild them from the role store (or token
// claims) on every request, so role changes take effect on the next request
// without any engine-side invalidation.
type Snapshot struct {
	OrganizationID string
	UserID         string
	Roles          []RoleGrant

	// Overrides are permissions granted directly to the principal, outside
	// any role. They expand and union exactly like role grants.
	Overrides PermissionSet
}

// Grants returns every permission the snapshot grants, across roles and
// overrides, before implication expansion.
func (s Snapshot) Grants() []Permission {
	var out []Permission
	for _, r := range s.Roles {
		out = append(out, r.Permissions...)
	}
	for p := range s.Overrides {
		out = append(out, p)
	}
	return out
}

// HighestLevel returns the highest level among the snapshot's roles, or zero
// when the principal holds no roles.
func (s Snapshot) HighestLevel() Level {
	var max Level
	for _, r := range s.Roles {
		if r.Level > max {
			max = r.Level
		}
	}
	return max
}

// Engine is the access-decision façade. It owns the catalog and the closure
// cache and answers permission, field-mask, and role-management questions
// about principal snapshots. An Engine is cheap to share and safe for
// concurrent use.
type Engine struct {
	catalog  *Catalog
	expander *Expander
}

// EngineOption configures an Engine under construction.
type EngineOption func(*Engine)

// WithCatalog sets the permission catalog. Defaults to DefaultCatalog.
func WithCatalog(c *Catalog) EngineOption {
	return func(e *Engine) {
		e.catalog = c
	}
}

// New returns an engine over the configured catalog.
func New(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = DefaultCatalog()
	}
	e.expander = NewExpander(e.catalog)
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// EffectivePermissions expands every grant in the snapshot through the
// implication graph and returns the union.
func (e *Engine) EffectivePermissions(ctx context.Context, snap Snapshot) (PermissionSet, error) {
	effective, err := e.expander.ExpandAll(snap.Grants())
	if err != nil {
		return nil, err
	}
	logging.Track(ctx, "authz.EffectiveCount", len(effective))
	return effective, nil
}

// HasPermission reports whether the snapshot grants the permission, directly
// or through implication. A principal with no roles and no overrides is
// denied without error; an unknown action is an error, never a silent deny.
//
// Resolution is most-specific first. A request scoped to a content type is
// satisfied by a matching content-type grant or by a global grant; a request
// scoped to a field additionally checks the field rung and applies the
// allow-list narrowing rule.
func (e *Engine) HasPermission(ctx context.Context, snap Snapshot, p Permission) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	logging.Track(ctx, "authz.Check", p.String())
	logging.Track(ctx, "authz.OrganizationID", snap.OrganizationID)

	if !e.catalog.KnownAction(p.Action) {
		return false, errors.WrapPrefix(errors.Mark(ErrUnknownAction, 0), p.String(), 0)
	}

	grants := snap.Grants()
	if len(grants) == 0 {
		return false, nil
	}

	effective, err := e.expander.ExpandAll(grants)
	if err != nil {
		return false, err
	}

	if p.IsFieldScoped() {
		return hasScopedAccess(effective, p.Resource, p.ContentType, p.Field, p.Action), nil
	}
	if effective.Contains(p) {
		return true, nil
	}
	if p.ContentType != "" && effective.Contains(p.Global()) {
		return true, nil
	}
	return false, nil
}

// AccessibleFields returns the fields of a content type the snapshot may
// touch with the action, filtered from the candidate names.
func (e *Engine) AccessibleFields(ctx context.Context, snap Snapshot, contentType string, action Action, candidates []string) ([]string, error) {
	if !e.catalog.KnownAction(action) {
		return nil, errors.Mark(ErrUnknownAction, 0)
	}
	effective, err := e.expander.ExpandAll(snap.Grants())
	if err != nil {
		return nil, err
	}
	return AccessibleFields(effective, contentType, action, candidates), nil
}

// FilterRecordByPermission returns a copy of the record stripped to the
// fields the snapshot may touch with the action. Candidate fields are the
// record's own keys.
func (e *Engine) FilterRecordByPermission(ctx context.Context, snap Snapshot, contentType string, action Action, record Record) (Record, error) {
	candidates := make([]string, 0, len(record))
	for k := range record {
		candidates = append(candidates, k)
	}
	accessible, err := e.AccessibleFields(ctx, snap, contentType, action, candidates)
	if err != nil {
		return nil, err
	}
	logging.Track(ctx, "authz.FieldsAllowed", len(accessible))
	return FilterRecord(record, accessible), nil
}

// CanManageRole reports whether the snapshot's highest role level may manage
// a role at the target level.
func (e *Engine) CanManageRole(snap Snapshot, target Level) bool {
	return CanManage(snap.HighestLevel(), target)
}
