package roles

import (
	"context"

	"github.com/bsakweson/bakalr-cms-sub001/authz"
	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/codes"
)

// Claims is the JWT claim set issued by the identity layer: the standard
// registered claims plus the organization the token is scoped to and the
// names of the roles held there.
type Claims struct {
	jwt.RegisteredClaims

	OrganizationID string   `json:"org"`
	Roles          []string `json:"roles"`
}

// SnapshotFromClaims builds an authz.Snapshot from token claims, resolving
// each claimed role name against the store. Tokens carry names rather than
// grants so that permission edits take effect without re-issuing tokens; a
// claimed role that no longer exists is skipped rather than failing the
// request, since deletion after issuance is a normal lifecycle event.
func (m *Manager) SnapshotFromClaims(ctx context.Context, claims Claims) (authz.Snapshot, error) {
	if claims.OrganizationID == "" {
		return authz.Snapshot{}, errors.NewC("roles: token claims missing organization", codes.Unauthenticated)
	}

	snap := authz.Snapshot{
		OrganizationID: claims.OrganizationID,
		UserID:         claims.Subject,
	}
	for _, name := range claims.Roles {
		role, err := m.FindRoleByName(claims.OrganizationID, name)
		if err != nil {
			if errors.Code(err) == codes.NotFound {
				continue
			}
			return authz.Snapshot{}, err
		}
		snap.Roles = append(snap.Roles, authz.RoleGrant{
			Name:        role.Name,
			Level:       role.Level,
			Permissions: role.Grants,
		})
	}
	return snap, nil
}
