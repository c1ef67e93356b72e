package roles

import (
	"context"

	"github.com/bsakweson/bakalr-cms-sub001/authz"
	"github.com/bsakweson/bakalr-cms-sub001/logging"
)

// Snapshot assembles the per-request authz.Snapshot for a user: every role
// assigned to them in the organization, flattened to name, level, and grants.
// The snapshot is built fresh from the store on each call, so role changes
// are visible on the next request without any cache invalidation.
func (m *Manager) Snapshot(ctx context.Context, orgID, userID string) (authz.Snapshot, error) {
	var assigned []Assignment
	if err := m.store.List(&assigned, Assignment{OrganizationID: orgID, UserID: userID}); err != nil {
		return authz.Snapshot{}, err
	}

	snap := authz.Snapshot{
		OrganizationID: orgID,
		UserID:         userID,
	}
	for _, a := range assigned {
		role, err := m.GetRole(orgID, a.RoleID)
		if err != nil {
			return authz.Snapshot{}, err
		}
		snap.Roles = append(snap.Roles, authz.RoleGrant{
			Name:        role.Name,
			Level:       role.Level,
			Permissions: role.Grants,
		})
	}

	logging.Track(ctx, "roles.SnapshotRoles", len(snap.Roles))
	return snap, nil
}
