package authz

import (
	"context"
	"testing"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editorSnapshot() Snapshot {
	return Snapshot{
		OrganizationID: "org-acme",
		UserID:         "user-1",
		Roles: []RoleGrant{
			{
				Name:  "editor",
				Level: LevelEditor,
				Permissions: []Permission{
					{Resource: ResourceContent, Action: ActionUpdate},
					{Resource: ResourceMedia, Action: ActionRead},
				},
			},
		},
	}
}

func TestHasPermissionThroughImplication(t *testing.T) {
	engine := New()
	ctx := context.Background()
	snap := editorSnapshot()

	tests := []struct {
		name string
		perm Permission
		want bool
	}{
		{"direct grant", Permission{Resource: ResourceContent, Action: ActionUpdate}, true},
		{"implied read", Permission{Resource: ResourceContent, Action: ActionRead}, true},
		{"not granted delete", Permission{Resource: ResourceContent, Action: ActionDelete}, false},
		{"not granted publish", Permission{Resource: ResourceContent, Action: ActionPublish}, false},
		{"other resource", Permission{Resource: ResourceMedia, Action: ActionRead}, true},
		{"other resource not implied", Permission{Resource: ResourceMedia, Action: ActionUpdate}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.HasPermission(ctx, snap, tt.perm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasPermissionScopedRequest(t *testing.T) {
	engine := New()
	ctx := context.Background()

	// Global grant satisfies a content-type scoped request.
	snap := editorSnapshot()
	ok, err := engine.HasPermission(ctx, snap, Permission{Resource: ResourceContent, Action: ActionRead, ContentType: "article"})
	require.NoError(t, err)
	assert.True(t, ok)

	// Scoped grant does not satisfy a global request.
	scoped := Snapshot{
		OrganizationID: "org-acme",
		Roles: []RoleGrant{{
			Name:  "article-editor",
			Level: LevelEditor,
			Permissions: []Permission{
				{Resource: ResourceContent, Action: ActionUpdate, ContentType: "article"},
			},
		}},
	}
	ok, err = engine.HasPermission(ctx, scoped, Permission{Resource: ResourceContent, Action: ActionUpdate})
	require.NoError(t, err)
	assert.False(t, ok)

	// Nor a request scoped to a different content type.
	ok, err = engine.HasPermission(ctx, scoped, Permission{Resource: ResourceContent, Action: ActionUpdate, ContentType: "page"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionNoRolesDeniesWithoutError(t *testing.T) {
	engine := New()
	ok, err := engine.HasPermission(context.Background(), Snapshot{OrganizationID: "org-acme"},
		Permission{Resource: ResourceContent, Action: ActionRead})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionUnknownAction(t *testing.T) {
	engine := New()
	_, err := engine.HasPermission(context.Background(), editorSnapshot(),
		Permission{Resource: ResourceContent, Action: "frobnicate"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestHasPermissionFieldScoped(t *testing.T) {
	engine := New()
	ctx := context.Background()
	snap := Snapshot{
		OrganizationID: "org-acme",
		Roles: []RoleGrant{{
			Name:  "viewer",
			Level: LevelViewer,
			Permissions: []Permission{
				{Resource: ResourceContent, Action: ActionRead},
				{Resource: ResourceContent, Action: ActionRead, ContentType: "employee", Field: "name"},
			},
		}},
	}

	ok, err := engine.HasPermission(ctx, snap, Permission{Resource: ResourceContent, Action: ActionRead, ContentType: "employee", Field: "name"})
	require.NoError(t, err)
	assert.True(t, ok)

	// The allow-list on employee blocks the global grant for other fields.
	ok, err = engine.HasPermission(ctx, snap, Permission{Resource: ResourceContent, Action: ActionRead, ContentType: "employee", Field: "salary"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasPermissionOverrides(t *testing.T) {
	engine := New()
	snap := Snapshot{
		OrganizationID: "org-acme",
		Overrides: NewPermissionSet(
			Permission{Resource: ResourceWebhook, Action: ActionDelete},
		),
	}

	ok, err := engine.HasPermission(context.Background(), snap,
		Permission{Resource: ResourceWebhook, Action: ActionRead})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEffectivePermissions(t *testing.T) {
	engine := New()
	effective, err := engine.EffectivePermissions(context.Background(), editorSnapshot())
	require.NoError(t, err)

	assert.True(t, effective.Contains(Permission{Resource: ResourceContent, Action: ActionUpdate}))
	assert.True(t, effective.Contains(Permission{Resource: ResourceContent, Action: ActionRead}))
	assert.True(t, effective.Contains(Permission{Resource: ResourceMedia, Action: ActionRead}))
	assert.Len(t, effective, 3)
}

func TestFilterRecordByPermission(t *testing.T) {
	engine := New()
	snap := Snapshot{
		OrganizationID: "org-acme",
		Roles: []RoleGrant{{
			Name:  "hr-viewer",
			Level: LevelViewer,
			Permissions: []Permission{
				{Resource: ResourceContent, Action: ActionRead, ContentType: "employee", Field: "name"},
				{Resource: ResourceContent, Action: ActionRead, ContentType: "employee", Field: "title"},
			},
		}},
	}

	record := Record{"name": "Ada", "title": "Engineer", "salary": 120000, "ssn": "000-00-0000"}
	got, err := engine.FilterRecordByPermission(context.Background(), snap, "employee", ActionRead, record)
	require.NoError(t, err)
	assert.Equal(t, Record{"name": "Ada", "title": "Engineer"}, got)

	// Input untouched.
	assert.Len(t, record, 4)
}

func TestAccessibleFieldsUnknownAction(t *testing.T) {
	engine := New()
	_, err := engine.AccessibleFields(context.Background(), editorSnapshot(), "article", "frobnicate", []string{"title"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestSnapshotHighestLevel(t *testing.T) {
	snap := Snapshot{
		Roles: []RoleGrant{
			{Name: "viewer", Level: LevelViewer},
			{Name: "admin", Level: LevelAdmin},
			{Name: "editor", Level: LevelEditor},
		},
	}
	assert.Equal(t, LevelAdmin, snap.HighestLevel())
	assert.Equal(t, Level(0), Snapshot{}.HighestLevel())
}

func TestCanManageRole(t *testing.T) {
	engine := New()
	snap := Snapshot{Roles: []RoleGrant{{Name: "admin", Level: LevelAdmin}}}

	assert.True(t, engine.CanManageRole(snap, LevelEditor))
	assert.False(t, engine.CanManageRole(snap, LevelAdmin))
	assert.False(t, engine.CanManageRole(snap, LevelOrgAdmin))
	assert.False(t, engine.CanManageRole(Snapshot{}, LevelViewer))
}
