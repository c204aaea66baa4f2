package ratings_test

import (
	"testing"

	"github.com/mauv0809/squadroll/internal/database"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (ratings.RatingStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return ratings.New(db), teardown
}

func TestSetAndGetRatings(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.SetRating(1, 1250))
	require.NoError(t, store.SetRating(2, 900))
	require.NoError(t, store.SetRating(1, 1300))
	assert.ErrorIs(t, store.SetRating(3, -1), ratings.ErrInvalidRating)

	got, err := store.GetRatings([]int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{1: 1300, 2: 900}, got)

	got, err = store.GetRatings(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLinks(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.GetLink(1)
	assert.ErrorIs(t, err, ratings.ErrNotFound)

	require.NoError(t, store.SetLink(ratings.Link{UserID: 1, SummonerName: "Teemo", Region: "euw"}))
	require.NoError(t, store.SetLink(ratings.Link{UserID: 1, SummonerName: "Teemo Main", Region: "eune"}))

	link, err := store.GetLink(1)
	require.NoError(t, err)
	assert.Equal(t, &ratings.Link{UserID: 1, SummonerName: "Teemo Main", Region: "EUNE"}, link)
}

func TestApplyRankSetsRating(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	rating, err := store.ApplyRank(ratings.Rank{UserID: 5, Source: ratings.SourceOffline, Tier: "gold", Division: "ii", LP: 55})
	require.NoError(t, err)
	assert.Equal(t, 1167.5, rating)

	rank, err := store.GetRank(5)
	require.NoError(t, err)
	assert.Equal(t, "GOLD", rank.Tier)
	assert.Equal(t, "II", rank.Division)
	assert.Equal(t, ratings.SourceOffline, rank.Source)
	assert.False(t, rank.UpdatedAt.IsZero())

	got, err := store.GetRatings([]int64{5})
	require.NoError(t, err)
	assert.Equal(t, 1167.5, got[5])

	_, err = store.ApplyRank(ratings.Rank{UserID: 5, Tier: "WOOD"})
	assert.ErrorIs(t, err, ratings.ErrInvalidTier)
	rank, err = store.GetRank(5)
	require.NoError(t, err)
	assert.Equal(t, "GOLD", rank.Tier, "a rejected rank leaves the stored one")
}

func TestListEntries(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.SetRating(3, 1400))
	require.NoError(t, store.SetLink(ratings.Link{UserID: 2, SummonerName: "Ahri", Region: "NA"}))
	_, err := store.ApplyRank(ratings.Rank{UserID: 1, Source: ratings.SourceRiot, Tier: "MASTER", LP: 20})
	require.NoError(t, err)

	all, err := store.ListEntries(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].UserID)
	assert.True(t, all[0].Rated)
	assert.Equal(t, 1510.0, all[0].Rating)
	require.NotNil(t, all[0].Rank)
	assert.Empty(t, all[0].Rank.Division)

	assert.False(t, all[1].Rated)
	assert.Equal(t, ratings.DefaultRating, all[1].Rating)
	require.NotNil(t, all[1].Link)
	assert.Equal(t, "Ahri", all[1].Link.SummonerName)

	some, err := store.ListEntries([]int64{3, 99})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, 1400.0, some[0].Rating)
	assert.Equal(t, int64(99), some[1].UserID)
	assert.False(t, some[1].Rated)
}
