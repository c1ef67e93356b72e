package authz

import (
	"testing"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandIncludesSelf(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	set, err := e.Expand(Permission{Resource: ResourceContent, Action: ActionRead})
	require.NoError(t, err)
	assert.True(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionRead}))
	assert.Len(t, set, 1)
}

func TestExpandFollowsChain(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	// delete -> update -> read
	set, err := e.Expand(Permission{Resource: ResourceContent, Action: ActionDelete})
	require.NoError(t, err)
	assert.True(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionDelete}))
	assert.True(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionUpdate}))
	assert.True(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionRead}))
	assert.False(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionPublish}))
}

func TestExpandPreservesScoping(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	set, err := e.Expand(Permission{Resource: ResourceContent, Action: ActionUpdate, ContentType: "article"})
	require.NoError(t, err)
	assert.True(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionRead, ContentType: "article"}))
	// Expansion never widens: the global read permission is not granted.
	assert.False(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionRead}))

	set, err = e.Expand(Permission{Resource: ResourceContent, Action: ActionUpdate, ContentType: "article", Field: "title"})
	require.NoError(t, err)
	assert.True(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionRead, ContentType: "article", Field: "title"}))
	assert.False(t, set.Contains(Permission{Resource: ResourceContent, Action: ActionRead, ContentType: "article"}))
}

func TestExpandUnknownAction(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	_, err := e.Expand(Permission{Resource: ResourceContent, Action: "frobnicate"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestExpandRejectsMalformedPermission(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	_, err := e.Expand(Permission{Resource: ResourceContent, Action: ActionRead, Field: "title"})
	require.Error(t, err)
}

func TestExpandIsIdempotent(t *testing.T) {
	e := NewExpander(DefaultCatalog())
	p := Permission{Resource: ResourceContent, Action: ActionDelete}

	first, err := e.Expand(p)
	require.NoError(t, err)

	// Re-expanding every member of the closure adds nothing.
	again, err := e.ExpandAll(first.Slice())
	require.NoError(t, err)
	assert.Equal(t, first.Slice(), again.Slice())
}

func TestExpandAllIsMonotonic(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	small, err := e.ExpandAll([]Permission{
		{Resource: ResourceContent, Action: ActionRead},
	})
	require.NoError(t, err)

	large, err := e.ExpandAll([]Permission{
		{Resource: ResourceContent, Action: ActionRead},
		{Resource: ResourceMedia, Action: ActionDelete},
	})
	require.NoError(t, err)

	for p := range small {
		assert.True(t, large.Contains(p), "adding a grant dropped %s", p)
	}
	assert.Greater(t, len(large), len(small))
}

func TestExpandMemoizesAcrossScopes(t *testing.T) {
	e := NewExpander(DefaultCatalog())

	global, err := e.Expand(Permission{Resource: ResourceContent, Action: ActionDelete})
	require.NoError(t, err)

	scoped, err := e.Expand(Permission{Resource: ResourceContent, Action: ActionDelete, ContentType: "article"})
	require.NoError(t, err)

	// Same closure size; scoping is applied after the cached walk.
	assert.Equal(t, len(global), len(scoped))
	for p := range scoped {
		assert.Equal(t, "article", p.ContentType)
	}
}

func TestExpandTerminatesOnLongChain(t *testing.T) {
	opts := []CatalogOption{WithResources("doc")}
	actions := make([]Action, 50)
	for i := range actions {
		actions[i] = Action(rune('a'+i%26)) + Action(rune('a'+i/26))
	}
	for i := range actions {
		opts = append(opts, WithActions(actions[i]))
		if i > 0 {
			opts = append(opts, WithEdge(actions[i-1], actions[i]))
		}
	}
	c, err := NewCatalog(opts...)
	require.NoError(t, err)

	set, err := NewExpander(c).Expand(Permission{Resource: "doc", Action: actions[0]})
	require.NoError(t, err)
	assert.Len(t, set, len(actions))
}
