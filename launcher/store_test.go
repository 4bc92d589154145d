package launcher_test

import (
	"testing"
	"time"

	"github.com/kastheco/craftdeck/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *launcher.Store {
	t.Helper()
	store, err := launcher.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testInstance(id, name string, created time.Time) launcher.Instance {
	return launcher.Instance{
		ID:          id,
		Name:        name,
		Slug:        id,
		GameVersion: "1.20.1",
		Loader:      launcher.LoaderFabric,
		Stage:       launcher.StageInstalled,
		Created:     created,
		Modified:    created,
	}
}

func TestStore_CreateAndGetInstance(t *testing.T) {
	store := newTestStore(t)
	on := true
	inst := testInstance("a", "Alpha", time.Now().UTC())
	inst.MemoryMB = 4096
	inst.Fullscreen = &on
	require.NoError(t, store.CreateInstance(inst))

	got, err := store.GetInstance("a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, launcher.LoaderFabric, got.Loader)
	assert.Equal(t, 4096, got.MemoryMB)
	require.NotNil(t, got.Fullscreen)
	assert.True(t, *got.Fullscreen)
	assert.True(t, got.Installed())
	assert.True(t, got.Created.Equal(inst.Created))
	assert.True(t, got.LastPlayed.IsZero())
}

func TestStore_GetInstanceNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetInstance("missing")
	assert.ErrorIs(t, err, launcher.ErrInstanceNotFound)
}

func TestStore_ListInstancesOldestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateInstance(testInstance("b", "Beta", base.Add(time.Second))))
	require.NoError(t, store.CreateInstance(testInstance("a", "Alpha", base.Add(500*time.Millisecond))))
	require.NoError(t, store.CreateInstance(testInstance("c", "Gamma", base.Add(2*time.Second))))

	list, err := store.ListInstances()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestStore_UpdateInstance(t *testing.T) {
	store := newTestStore(t)
	inst := testInstance("a", "Alpha", time.Now())
	require.NoError(t, store.CreateInstance(inst))

	inst.Name = "Renamed"
	inst.Fullscreen = nil
	inst.Stage = launcher.StageNotInstalled
	require.NoError(t, store.UpdateInstance(inst))

	got, err := store.GetInstance("a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Nil(t, got.Fullscreen)
	assert.False(t, got.Installed())

	err = store.UpdateInstance(testInstance("ghost", "Ghost", time.Now()))
	assert.ErrorIs(t, err, launcher.ErrInstanceNotFound)
}

func TestStore_SlugTaken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateInstance(testInstance("a", "Alpha", time.Now())))

	taken, err := store.SlugTaken("a")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = store.SlugTaken("b")
	require.NoError(t, err)
	assert.False(t, taken)

	dup := testInstance("other", "Other", time.Now())
	dup.Slug = "a"
	assert.Error(t, store.CreateInstance(dup))
}

func TestStore_DeleteInstanceCascadesFileMeta(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateInstance(testInstance("a", "Alpha", time.Now())))
	require.NoError(t, store.PutFileMeta("a", "abc", launcher.FileMeta{ProjectID: "P1", VersionID: "V1"}))

	require.NoError(t, store.DeleteInstance("a"))
	metas, err := store.FileMetas("a")
	require.NoError(t, err)
	assert.Empty(t, metas)

	assert.ErrorIs(t, store.DeleteInstance("a"), launcher.ErrInstanceNotFound)
}

func TestStore_FileMetaUpsert(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateInstance(testInstance("a", "Alpha", time.Now())))

	require.NoError(t, store.PutFileMeta("a", "abc", launcher.FileMeta{ProjectID: "P1", VersionID: "V1"}))
	require.NoError(t, store.PutFileMeta("a", "abc", launcher.FileMeta{ProjectID: "P1", VersionID: "V2"}))

	metas, err := store.FileMetas("a")
	require.NoError(t, err)
	assert.Equal(t, map[string]launcher.FileMeta{"abc": {ProjectID: "P1", VersionID: "V2"}}, metas)

	require.NoError(t, store.DeleteFileMeta("a", "abc"))
	require.NoError(t, store.DeleteFileMeta("a", "abc"))
	metas, err = store.FileMetas("a")
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestStore_Accounts(t *testing.T) {
	store := newTestStore(t)
	base := time.Now()
	require.NoError(t, store.CreateAccount(launcher.Account{ID: "1", Username: "Steve", Added: base}))
	require.NoError(t, store.CreateAccount(launcher.Account{ID: "2", Username: "Alex", Added: base.Add(time.Second)}))

	err := store.CreateAccount(launcher.Account{ID: "3", Username: "Steve", Added: base})
	assert.ErrorIs(t, err, launcher.ErrAccountExists)

	accounts, err := store.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Steve", accounts[0].Username)
	assert.Equal(t, "Alex", accounts[1].Username)

	require.NoError(t, store.DeleteAccount("Steve"))
	assert.ErrorIs(t, store.DeleteAccount("Steve"), launcher.ErrAccountNotFound)
}
