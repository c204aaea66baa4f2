package ratings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrder(t *testing.T) {
	store := ratings.NewMock()
	require.NoError(t, store.SetRating(1, 1300))
	require.NoError(t, store.SetLink(ratings.Link{UserID: 2, SummonerName: "Teemo", Region: "EUW"}))
	require.NoError(t, store.SetLink(ratings.Link{UserID: 4, SummonerName: "Ghost", Region: "EUW"}))
	require.NoError(t, store.SetLink(ratings.Link{UserID: 1, SummonerName: "Rated", Region: "EUW"}))

	client := riot.NewMockClient()
	client.FetchRankFunc = func(_ context.Context, platform, name string) (*riot.RankInfo, error) {
		assert.Equal(t, "euw1", platform)
		if name == "Ghost" {
			return nil, riot.ErrNotFound
		}
		return &riot.RankInfo{Tier: "DIAMOND", Division: "IV", LP: 0}, nil
	}
	m := metrics.NewMock()
	usage := metrics.NewMockStore()
	resolver := ratings.NewResolver(store, client, m, usage)

	res, err := resolver.Resolve(context.Background(), []int64{1, 2, 3, 4}, true)
	require.NoError(t, err)
	assert.Equal(t, []teams.Player{
		{ID: 1, Rating: 1300},
		{ID: 2, Rating: 1400},
		{ID: 3, Rating: ratings.DefaultRating},
		{ID: 4, Rating: ratings.DefaultRating},
	}, res.Players)
	assert.Equal(t, []int64{2}, res.Imported)
	assert.Equal(t, []int64{3, 4}, res.Defaulted)

	require.Len(t, client.FetchRankCalls, 2, "stored ratings are not looked up")
	assert.Equal(t, 2, m.RiotLookups())
	assert.Equal(t, 1, m.RiotFailures())
	counts, _ := usage.GetAll()
	assert.Equal(t, 1, counts[metrics.KeyRiotImports])

	rank, err := store.GetRank(2)
	require.NoError(t, err)
	assert.Equal(t, ratings.SourceRiot, rank.Source)
}

func TestResolveWithoutImport(t *testing.T) {
	store := ratings.NewMock()
	require.NoError(t, store.SetLink(ratings.Link{UserID: 2, SummonerName: "Teemo", Region: "EUW"}))
	client := riot.NewMockClient()
	resolver := ratings.NewResolver(store, client, metrics.NewMock(), nil)

	res, err := resolver.Resolve(context.Background(), []int64{2}, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, res.Defaulted)
	assert.Empty(t, client.FetchRankCalls)

	noClient := ratings.NewResolver(store, nil, metrics.NewMock(), nil)
	assert.False(t, noClient.CanImport())
	res, err = noClient.Resolve(context.Background(), []int64{2}, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, res.Defaulted)
}

func TestImport(t *testing.T) {
	store := ratings.NewMock()
	client := riot.NewMockClient()
	client.FetchRankFunc = func(context.Context, string, string) (*riot.RankInfo, error) {
		return &riot.RankInfo{Tier: "GOLD", Division: "I", LP: 100}, nil
	}
	resolver := ratings.NewResolver(store, client, metrics.NewMock(), nil)

	rank, rating, err := resolver.Import(context.Background(), ratings.Link{UserID: 8, SummonerName: "Lux", Region: "na"})
	require.NoError(t, err)
	assert.Equal(t, 1210.0, rating)
	assert.Equal(t, "GOLD", rank.Tier)

	_, _, err = resolver.Import(context.Background(), ratings.Link{UserID: 8, SummonerName: "Lux", Region: "mars"})
	assert.ErrorIs(t, err, riot.ErrUnknownRegion)

	client.FetchRankFunc = func(context.Context, string, string) (*riot.RankInfo, error) {
		return nil, errors.New("boom")
	}
	_, _, err = resolver.Import(context.Background(), ratings.Link{UserID: 8, SummonerName: "Lux", Region: "na"})
	assert.Error(t, err)

	_, _, err = ratings.NewResolver(store, nil, metrics.NewMock(), nil).Import(context.Background(), ratings.Link{UserID: 8, Region: "na"})
	assert.ErrorIs(t, err, riot.ErrNoAPIKey)
}
