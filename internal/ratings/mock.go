package ratings

import (
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory RatingStore for tests. It is safe for concurrent use.
type MockStore struct {
	mu      sync.Mutex
	ratings map[int64]float64
	links   map[int64]Link
	ranks   map[int64]Rank

	SetRatingCalls []struct {
		UserID int64
		Rating float64
	}
	ApplyRankCalls []Rank
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{
		ratings: make(map[int64]float64),
		links:   make(map[int64]Link),
		ranks:   make(map[int64]Rank),
	}
}

func (m *MockStore) GetRatings(ids []int64) (map[int64]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]float64)
	for _, id := range ids {
		if r, ok := m.ratings[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (m *MockStore) SetRating(userID int64, rating float64) error {
	if rating < 0 || rating > MaxRating {
		return ErrInvalidRating
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetRatingCalls = append(m.SetRatingCalls, struct {
		UserID int64
		Rating float64
	}{userID, rating})
	m.ratings[userID] = rating
	return nil
}

func (m *MockStore) SetLink(link Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[link.UserID] = link
	return nil
}

func (m *MockStore) GetLink(userID int64) (*Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.links[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (m *MockStore) GetRank(userID int64) (*Rank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ranks[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MockStore) ApplyRank(rank Rank) (float64, error) {
	tier, division, err := NormalizeRank(rank.Tier, rank.Division)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rank.Tier, rank.Division, rank.UpdatedAt = tier, division, time.Now().UTC()
	m.ApplyRankCalls = append(m.ApplyRankCalls, rank)
	m.ranks[rank.UserID] = rank
	rating := RankToRating(tier, division, rank.LP)
	m.ratings[rank.UserID] = rating
	return rating, nil
}

func (m *MockStore) ListEntries(ids []int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(ids) == 0 {
		seen := make(map[int64]bool)
		for id := range m.ratings {
			seen[id] = true
		}
		for id := range m.links {
			seen[id] = true
		}
		for id := range m.ranks {
			seen[id] = true
		}
		for id := range seen {
			ids = append(ids, id)
		}
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e := Entry{UserID: id, Rating: DefaultRating}
		if r, ok := m.ratings[id]; ok {
			e.Rating, e.Rated = r, true
		}
		if l, ok := m.links[id]; ok {
			e.Link = &l
		}
		if r, ok := m.ranks[id]; ok {
			e.Rank = &r
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}
