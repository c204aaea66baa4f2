package riot

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of the RiotClient interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	GetSummonerByNameFunc func(ctx context.Context, platform, name string) (*Summoner, error)
	GetLeagueEntriesFunc  func(ctx context.Context, platform, summonerID string) ([]LeagueEntry, error)
	FetchRankFunc         func(ctx context.Context, platform, name string) (*RankInfo, error)

	// Call records
	FetchRankCalls []struct {
		Platform string
		Name     string
	}
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetSummonerByName(ctx context.Context, platform, name string) (*Summoner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSummonerByNameFunc != nil {
		return m.GetSummonerByNameFunc(ctx, platform, name)
	}
	return nil, ErrNotFound
}

func (m *MockClient) GetLeagueEntries(ctx context.Context, platform, summonerID string) ([]LeagueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLeagueEntriesFunc != nil {
		return m.GetLeagueEntriesFunc(ctx, platform, summonerID)
	}
	return nil, nil
}

func (m *MockClient) FetchRank(ctx context.Context, platform, name string) (*RankInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchRankCalls = append(m.FetchRankCalls, struct {
		Platform string
		Name     string
	}{platform, name})
	if m.FetchRankFunc != nil {
		return m.FetchRankFunc(ctx, platform, name)
	}
	return nil, ErrNotFound
}
