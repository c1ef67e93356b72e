package roles_test

import (
	"context"
	"testing"

	"github.com/bsakweson/bakalr-cms-sub001/authz"
	"github.com/bsakweson/bakalr-cms-sub001/roles"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFromClaims(t *testing.T) {
	m := seededManager(t)
	ctx := context.Background()

	claims := roles.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		OrganizationID:   testOrg,
		Roles:            []string{"editor", "viewer"},
	}

	snap, err := m.SnapshotFromClaims(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, testOrg, snap.OrganizationID)
	assert.Equal(t, "user-1", snap.UserID)
	require.Len(t, snap.Roles, 2)
	assert.Equal(t, authz.LevelEditor, snap.HighestLevel())
}

func TestSnapshotFromClaimsSkipsDeletedRoles(t *testing.T) {
	m := seededManager(t)

	claims := roles.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		OrganizationID:   testOrg,
		Roles:            []string{"editor", "long-gone-role"},
	}

	snap, err := m.SnapshotFromClaims(context.Background(), claims)
	require.NoError(t, err)
	require.Len(t, snap.Roles, 1)
	assert.Equal(t, "editor", snap.Roles[0].Name)
}

func TestSnapshotFromClaimsRequiresOrg(t *testing.T) {
	m := seededManager(t)

	_, err := m.SnapshotFromClaims(context.Background(), roles.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	require.Error(t, err)
}

func TestClaimsRoundTripThroughToken(t *testing.T) {
	m := seededManager(t)

	in := roles.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		OrganizationID:   testOrg,
		Roles:            []string{"viewer"},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, in)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	var out roles.Claims
	_, err = jwt.ParseWithClaims(signed, &out, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	snap, err := m.SnapshotFromClaims(context.Background(), out)
	require.NoError(t, err)
	require.Len(t, snap.Roles, 1)
	assert.Equal(t, authz.LevelViewer, snap.HighestLevel())
}
