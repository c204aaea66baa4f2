package arena_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (arena.ArenaStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return arena.NewStore(db), teardown
}

func TestStoreRoundTrip(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	a, err := arena.New(42, 7, ids(6), 3)
	require.NoError(t, err)
	require.NoError(t, store.Create(a))
	require.NotZero(t, a.ID)

	_, err = a.Report("#1:1 | #3:4")
	require.NoError(t, err)
	require.NoError(t, store.Save(a))

	got, err := store.GetActive(42)
	require.NoError(t, err)
	if diff := cmp.Diff(a, got, cmpopts.EquateApproxTime(1e9)); diff != "" {
		t.Errorf("arena mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{2}, got.Pending())

	byID, err := store.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Scores, byID.Scores)
}

func TestStoreSingleRunningArenaPerGuild(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	first, err := arena.New(1, 7, ids(4), 0)
	require.NoError(t, err)
	require.NoError(t, store.Create(first))

	second, err := arena.New(1, 7, ids(4), 0)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Create(second), arena.ErrActiveArena)

	other, err := arena.New(2, 7, ids(4), 0)
	require.NoError(t, err)
	assert.NoError(t, store.Create(other), "another guild is independent")

	require.NoError(t, first.Cancel())
	require.NoError(t, store.Save(first))

	_, err = store.GetActive(1)
	assert.ErrorIs(t, err, arena.ErrNotFound)
	assert.NoError(t, store.Create(second))
}

func TestStoreNotFound(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.Get(404)
	assert.ErrorIs(t, err, arena.ErrNotFound)
	assert.ErrorIs(t, store.Save(&arena.Arena{ID: 404}), arena.ErrNotFound)
}
