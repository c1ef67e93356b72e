// Package roles manages role definitions and role assignments on top of a
// storage.Store, and assembles the per-request authz.Snapshot the decision
// engine consumes. The level checks here gate management operations (who may
// create, grant to, assign, or delete a role); the engine enforces the same
// comparator but never touches the store.
package roles

import (
	"context"
	"fmt"

	"github.com/bsakweson/bakalr-cms-sub001/authz"
	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/bsakweson/bakalr-cms-sub001/logging"
	"github.com/bsakweson/bakalr-cms-sub001/storage"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
)

var (
	// ErrRoleInUse is returned when deleting a role that still has
	// assignments.
	ErrRoleInUse = errors.NewC("roles: role still assigned to users", codes.FailedPrecondition)

	// ErrLevelTooLow is returned when the actor's level does not strictly
	// exceed the level of the role being managed.
	ErrLevelTooLow = errors.NewC("roles: actor level does not permit managing this role", codes.PermissionDenied)

	// ErrSystemRole is returned on attempts to modify or delete a system role
	// template.
	ErrSystemRole = errors.NewC("roles: system roles cannot be modified", codes.PermissionDenied)
)

// Role is a named bundle of permissions within one organization. System roles
// are the seeded templates; they cannot be modified or deleted.
type Role struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organizationId"`
	Name           string             `json:"name"`
	Level          authz.Level        `json:"level"`
	System         bool               `json:"system"`
	Grants         []authz.Permission `json:"grants"`
}

// PK partitions roles by organization so lookups and scans stay
// tenant-scoped.
func (r Role) PK() string {
	return r.OrganizationID + "/" + r.ID
}

// Assignment links a user to a role within an organization.
type Assignment struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
	RoleID         string `json:"roleId"`
}

func (a Assignment) PK() string {
	return a.OrganizationID + "/" + a.ID
}

// Manager performs role lifecycle operations against a store, enforcing the
// level hierarchy on every mutating call. The actorLevel arguments come from
// the caller's own snapshot (Snapshot.HighestLevel); passing a stale or
// inflated level is an authentication-layer bug, not something Manager can
// detect.
type Manager struct {
	store   storage.Store
	catalog *authz.Catalog
}

// NewManager returns a manager over the given store and catalog.
func NewManager(store storage.Store, catalog *authz.Catalog) *Manager {
	return &Manager{store: store, catalog: catalog}
}

// systemTemplate describes one seeded role.
type systemTemplate struct {
	name   string
	level  authz.Level
	grants []authz.Permission
}

func systemTemplates() []systemTemplate {
	all := func(action authz.Action) []authz.Permission {
		return []authz.Permission{
			{Resource: authz.ResourceContent, Action: action},
			{Resource: authz.ResourceMedia, Action: action},
			{Resource: authz.ResourceContentType, Action: action},
			{Resource: authz.ResourceRole, Action: action},
			{Resource: authz.ResourceWebhook, Action: action},
		}
	}
	content := func(actions ...authz.Action) []authz.Permission {
		var out []authz.Permission
		for _, a := range actions {
			out = append(out,
				authz.Permission{Resource: authz.ResourceContent, Action: a},
				authz.Permission{Resource: authz.ResourceMedia, Action: a},
			)
		}
		return out
	}
	return []systemTemplate{
		{"super_admin", authz.LevelSuperAdmin, append(all(authz.ActionDelete), append(all(authz.ActionCreate), all(authz.ActionPublish)...)...)},
		{"org_admin", authz.LevelOrgAdmin, append(all(authz.ActionDelete), append(all(authz.ActionCreate), all(authz.ActionPublish)...)...)},
		{"admin", authz.LevelAdmin, append(content(authz.ActionDelete, authz.ActionCreate, authz.ActionPublish), authz.Permission{Resource: authz.ResourceContentType, Action: authz.ActionRead})},
		{"editor", authz.LevelEditor, content(authz.ActionCreate, authz.ActionUpdate, authz.ActionPublish)},
		{"contributor", authz.LevelContributor, content(authz.ActionCreate, authz.ActionUpdate)},
		{"viewer", authz.LevelViewer, content(authz.ActionRead)},
	}
}

// SeedSystemRoles installs the system role templates for an organization.
// Seeding is idempotent; templates already present are overwritten in place
// so upgrades can reshape them.
func (m *Manager) SeedSystemRoles(ctx context.Context, orgID string) error {
	logging.Track(ctx, "roles.SeedOrg", orgID)
	for _, tmpl := range systemTemplates() {
		role := Role{
			ID:             "system-" + tmpl.name,
			OrganizationID: orgID,
			Name:           tmpl.name,
			Level:          tmpl.level,
			System:         true,
			Grants:         tmpl.grants,
		}
		if err := m.store.Upsert(role); err != nil {
			return errors.WrapPrefix(err, fmt.Sprintf("seeding role %q", tmpl.name), 0)
		}
	}
	return nil
}

// CreateRole creates a custom role. The level must fall in the custom range,
// and the actor must strictly outrank it. A zero level asks for a suggestion
// based on the role name.
func (m *Manager) CreateRole(ctx context.Context, actorLevel authz.Level, orgID, name string, level authz.Level, grants []authz.Permission) (Role, error) {
	if level == 0 {
		level = authz.SuggestLevel(name)
	}
	if err := authz.ValidateCustomLevel(level); err != nil {
		return Role{}, err
	}
	if !authz.CanManage(actorLevel, level) {
		return Role{}, errors.Mark(ErrLevelTooLow, 0)
	}
	for _, g := range grants {
		if err := m.validateGrant(g); err != nil {
			return Role{}, err
		}
	}

	role := Role{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           name,
		Level:          level,
		Grants:         grants,
	}
	if err := m.store.Create(role); err != nil {
		return Role{}, err
	}
	logging.Track(ctx, "roles.Created", role.PK())
	return role, nil
}

// Grant adds a permission to a role. The actor must outrank the role, the
// role must not be a system template, and the permission's action must exist
// in the catalog.
func (m *Manager) Grant(ctx context.Context, actorLevel authz.Level, orgID, roleID string, p authz.Permission) (Role, error) {
	role, err := m.mutableRole(actorLevel, orgID, roleID)
	if err != nil {
		return Role{}, err
	}
	if err := m.validateGrant(p); err != nil {
		return Role{}, err
	}
	for _, g := range role.Grants {
		if g == p {
			return role, nil
		}
	}
	role.Grants = append(role.Grants, p)
	if err := m.store.Update(role); err != nil {
		return Role{}, err
	}
	logging.Track(ctx, "roles.Granted", p.String())
	return role, nil
}

// Revoke removes a permission from a role. Revoking a permission the role
// does not hold is a no-op.
func (m *Manager) Revoke(ctx context.Context, actorLevel authz.Level, orgID, roleID string, p authz.Permission) (Role, error) {
	role, err := m.mutableRole(actorLevel, orgID, roleID)
	if err != nil {
		return Role{}, err
	}
	kept := role.Grants[:0]
	for _, g := range role.Grants {
		if g != p {
			kept = append(kept, g)
		}
	}
	role.Grants = kept
	if err := m.store.Update(role); err != nil {
		return Role{}, err
	}
	logging.Track(ctx, "roles.Revoked", p.String())
	return role, nil
}

// AssignRole assigns a role to a user. The actor must strictly outrank the
// role being assigned; system roles may be assigned, only their definitions
// are frozen.
func (m *Manager) AssignRole(ctx context.Context, actorLevel authz.Level, orgID, userID, roleID string) (Assignment, error) {
	role, err := m.GetRole(orgID, roleID)
	if err != nil {
		return Assignment{}, err
	}
	if !authz.CanManage(actorLevel, role.Level) {
		return Assignment{}, errors.Mark(ErrLevelTooLow, 0)
	}

	existing, err := m.assignments(orgID, userID, roleID)
	if err != nil {
		return Assignment{}, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	a := Assignment{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		UserID:         userID,
		RoleID:         roleID,
	}
	if err := m.store.Create(a); err != nil {
		return Assignment{}, err
	}
	logging.Track(ctx, "roles.Assigned", role.Name)
	return a, nil
}

// UnassignRole removes a user's assignment to a role. The actor must strictly
// outrank the role.
func (m *Manager) UnassignRole(ctx context.Context, actorLevel authz.Level, orgID, userID, roleID string) error {
	role, err := m.GetRole(orgID, roleID)
	if err != nil {
		return err
	}
	if !authz.CanManage(actorLevel, role.Level) {
		return errors.Mark(ErrLevelTooLow, 0)
	}

	existing, err := m.assignments(orgID, userID, roleID)
	if err != nil {
		return err
	}
	for _, a := range existing {
		if err := m.store.Delete(a); err != nil {
			return err
		}
	}
	logging.Track(ctx, "roles.Unassigned", role.Name)
	return nil
}

// DeleteRole removes a custom role. Roles still assigned to users cannot be
// deleted; unassign first.
func (m *Manager) DeleteRole(ctx context.Context, actorLevel authz.Level, orgID, roleID string) error {
	role, err := m.mutableRole(actorLevel, orgID, roleID)
	if err != nil {
		return err
	}

	var assigned []Assignment
	if err := m.store.List(&assigned, Assignment{OrganizationID: orgID, RoleID: roleID}); err != nil {
		return err
	}
	if len(assigned) > 0 {
		return errors.WrapPrefix(errors.Mark(ErrRoleInUse, 0), role.Name, 0)
	}

	if err := m.store.Delete(role); err != nil {
		return err
	}
	logging.Track(ctx, "roles.Deleted", role.Name)
	return nil
}

// GetRole fetches one role by id within an organization.
func (m *Manager) GetRole(orgID, roleID string) (Role, error) {
	var role Role
	if err := m.store.Read(Role{OrganizationID: orgID, ID: roleID}.PK(), &role); err != nil {
		return Role{}, err
	}
	return role, nil
}

// ListRoles returns all roles defined for an organization.
func (m *Manager) ListRoles(orgID string) ([]Role, error) {
	var out []Role
	if err := m.store.List(&out, Role{OrganizationID: orgID}); err != nil {
		return nil, err
	}
	return out, nil
}

// FindRoleByName returns the role with the given name in an organization.
func (m *Manager) FindRoleByName(orgID, name string) (Role, error) {
	var matches []Role
	if err := m.store.List(&matches, Role{OrganizationID: orgID, Name: name}); err != nil {
		return Role{}, err
	}
	if len(matches) == 0 {
		return Role{}, errors.WrapPrefix(errors.Mark(storage.ErrNotFound, 0), name, 0)
	}
	return matches[0], nil
}

// mutableRole loads a role and checks that the actor may modify it: custom
// roles only, and only below the actor's level.
func (m *Manager) mutableRole(actorLevel authz.Level, orgID, roleID string) (Role, error) {
	role, err := m.GetRole(orgID, roleID)
	if err != nil {
		return Role{}, err
	}
	if role.System {
		return Role{}, errors.WrapPrefix(errors.Mark(ErrSystemRole, 0), role.Name, 0)
	}
	if !authz.CanManage(actorLevel, role.Level) {
		return Role{}, errors.Mark(ErrLevelTooLow, 0)
	}
	return role, nil
}

// validateGrant checks a permission's shape and that its action exists in the
// catalog. Unknown resources are tolerated so hosts can define custom
// resources without re-seeding, but unknown actions would poison closure
// expansion and are rejected here at write time.
func (m *Manager) validateGrant(p authz.Permission) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if !m.catalog.KnownAction(p.Action) {
		return errors.WrapPrefix(errors.Mark(authz.ErrUnknownAction, 0), p.String(), 0)
	}
	return nil
}

// assignments lists a user's assignments to one role.
func (m *Manager) assignments(orgID, userID, roleID string) ([]Assignment, error) {
	var out []Assignment
	err := m.store.List(&out, Assignment{OrganizationID: orgID, UserID: userID, RoleID: roleID})
	return out, err
}
