package memorystore_test

import (
	"testing"

	"github.com/bsakweson/bakalr-cms-sub001/errors"
	"github.com/bsakweson/bakalr-cms-sub001/storage"
	"github.com/bsakweson/bakalr-cms-sub001/storage/memorystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRole struct {
	ID    string
	Org   string
	Level int
}

func (r testRole) PK() string { return r.ID }

func TestCreateReadRoundTrip(t *testing.T) {
	s := memorystore.New()
	require.NoError(t, s.Create(testRole{ID: "r1", Org: "acme", Level: 60}))

	var got testRole
	require.NoError(t, s.Read("r1", &got))
	assert.Equal(t, testRole{ID: "r1", Org: "acme", Level: 60}, got)
}

func TestCreateDuplicateFails(t *testing.T) {
	s := memorystore.New()
	require.NoError(t, s.Create(testRole{ID: "r1"}))
	err := s.Create(testRole{ID: "r1"})
	assert.True(t, errors.Is(err, storage.ErrAlreadyExists))
}

func TestUpdateMissingFails(t *testing.T) {
	s := memorystore.New()
	err := s.Update(testRole{ID: "ghost"})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestUpsertThenDelete(t *testing.T) {
	s := memorystore.New()
	require.NoError(t, s.Upsert(testRole{ID: "r1", Level: 20}))
	require.NoError(t, s.Upsert(testRole{ID: "r1", Level: 40}))

	var got testRole
	require.NoError(t, s.Read("r1", &got))
	assert.Equal(t, 40, got.Level)

	require.NoError(t, s.Delete(testRole{ID: "r1"}))
	exists, err := s.Exists("r1", &testRole{})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListWithFilter(t *testing.T) {
	s := memorystore.New()
	require.NoError(t, s.Create(
		testRole{ID: "r1", Org: "acme", Level: 60},
		testRole{ID: "r2", Org: "acme", Level: 20},
		testRole{ID: "r3", Org: "globex", Level: 60},
	))

	var acme []testRole
	require.NoError(t, s.List(&acme, testRole{Org: "acme"}))
	require.Len(t, acme, 2)
	assert.Equal(t, "r1", acme[0].ID)
	assert.Equal(t, "r2", acme[1].ID)

	var all []testRole
	require.NoError(t, s.List(&all, testRole{}))
	assert.Len(t, all, 3)
}

func TestListRequiresSlicePointer(t *testing.T) {
	s := memorystore.New()
	var notSlice testRole
	err := s.List(&notSlice, testRole{})
	assert.True(t, errors.Is(err, storage.ErrSliceRequired))
}

func TestReadNilModel(t *testing.T) {
	s := memorystore.New()
	var nilModel *testRole
	err := s.Read("r1", nilModel)
	assert.True(t, errors.Is(err, storage.ErrNilModel))
}
