package riot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(server *httptest.Server, key string) *APIClient {
	return &APIClient{
		httpClient: server.Client(),
		limiter:    rate.NewLimiter(rate.Inf, 1),
		apiKey:     key,
		BaseURL:    server.URL,
	}
}

func TestFetchRankPrefersSoloQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Riot-Token"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/lol/summoner/v4/summoners/by-name/Faker Fan":
			fmt.Fprintln(w, `{"id":"sum-1","puuid":"p-1","name":"Faker Fan","summonerLevel":300}`)
		case "/lol/league/v4/entries/by-summoner/sum-1":
			fmt.Fprintln(w, `[
				{"queueType":"RANKED_FLEX_SR","tier":"DIAMOND","rank":"I","leaguePoints":10},
				{"queueType":"RANKED_SOLO_5x5","tier":"gold","rank":"II","leaguePoints":55}
			]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	info, err := newTestClient(server, "secret").FetchRank(context.Background(), "euw1", "Faker Fan")
	require.NoError(t, err)
	assert.Equal(t, &RankInfo{Tier: "GOLD", Division: "II", LP: 55, Queue: QueueSoloDuo}, info)
}

func TestFetchRankFallsBackToFirstEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lol/summoner/v4/summoners/by-name/flex" {
			fmt.Fprintln(w, `{"id":"sum-2"}`)
			return
		}
		fmt.Fprintln(w, `[{"queueType":"RANKED_FLEX_SR","tier":"SILVER","rank":"IV","leaguePoints":0}]`)
	}))
	defer server.Close()

	info, err := newTestClient(server, "k").FetchRank(context.Background(), "na1", "flex")
	require.NoError(t, err)
	assert.Equal(t, "SILVER", info.Tier)
	assert.Equal(t, "RANKED_FLEX_SR", info.Queue)
}

func TestFetchRankUnranked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lol/summoner/v4/summoners/by-name/fresh" {
			fmt.Fprintln(w, `{"id":"sum-3"}`)
			return
		}
		fmt.Fprintln(w, `[]`)
	}))
	defer server.Close()

	_, err := newTestClient(server, "k").FetchRank(context.Background(), "na1", "fresh")
	assert.ErrorIs(t, err, ErrNoRankedEntry)
}

func TestClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/lol/summoner/v4/summoners/by-name/ghost" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprintln(w, `{"status":{"message":"Rate limit exceeded"}}`)
	}))
	defer server.Close()

	c := newTestClient(server, "k")
	_, err := c.GetSummonerByName(context.Background(), "euw1", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetLeagueEntries(context.Background(), "euw1", "sum-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = newTestClient(server, "").FetchRank(context.Background(), "euw1", "ghost")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestPlatformFor(t *testing.T) {
	p, err := PlatformFor(" euw ")
	require.NoError(t, err)
	assert.Equal(t, "euw1", p)

	_, err = PlatformFor("atlantis")
	assert.ErrorIs(t, err, ErrUnknownRegion)
	assert.Contains(t, Regions(), "OCE")
}

func TestPickEntry(t *testing.T) {
	_, ok := PickEntry(nil)
	assert.False(t, ok)
}
