package session

import (
	"sync"

	"github.com/mauv0809/squadroll/internal/teams"
)

// MockStore is an in-memory SessionStore for tests. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	GetOrCreateFunc func(guildID int64, name string) (*Session, error)
	CoverageFunc    func(sessionID int64, ids []int64) (int, int, error)

	sessions   map[sessionKey]*Session
	pairs      map[int64]map[teams.Pair]int
	signatures map[int64]map[Scope]map[string]struct{}
	nextID     int64

	// Call records
	CommitCalls []struct {
		SessionID int64
		Scope     Scope
		Comp      [][]int64
	}
	ClearCalls []*Scope
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{
		sessions:   make(map[sessionKey]*Session),
		pairs:      make(map[int64]map[teams.Pair]int),
		signatures: make(map[int64]map[Scope]map[string]struct{}),
	}
}

type sessionKey struct {
	guildID int64
	name    string
}

func key(guildID int64, name string) sessionKey {
	return sessionKey{guildID: guildID, name: name}
}

func (m *MockStore) GetOrCreate(guildID int64, name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(guildID, name)
	}
	k := key(guildID, name)
	if s, ok := m.sessions[k]; ok {
		return s, nil
	}
	m.nextID++
	s := &Session{ID: m.nextID, GuildID: guildID, Name: name}
	m.sessions[k] = s
	return s, nil
}

func (m *MockStore) Get(guildID int64, name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key(guildID, name)]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *MockStore) End(guildID int64, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(guildID, name)
	s, ok := m.sessions[k]
	if !ok {
		return false, nil
	}
	delete(m.sessions, k)
	delete(m.pairs, s.ID)
	delete(m.signatures, s.ID)
	return true, nil
}

func (m *MockStore) PairCounts(sessionID int64) (map[teams.Pair]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[teams.Pair]int)
	for p, n := range m.pairs[sessionID] {
		out[p] = n
	}
	return out, nil
}

func (m *MockStore) BumpPairCounts(sessionID int64, comp [][]int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bump(sessionID, comp)
	return nil
}

func (m *MockStore) bump(sessionID int64, comp [][]int64) {
	if m.pairs[sessionID] == nil {
		m.pairs[sessionID] = make(map[teams.Pair]int)
	}
	for _, p := range teams.TeammatePairs(comp) {
		m.pairs[sessionID][p]++
	}
}

func (m *MockStore) Signatures(sessionID int64, scope Scope) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{})
	for sig := range m.signatures[sessionID][scope] {
		out[sig] = struct{}{}
	}
	return out, nil
}

func (m *MockStore) AddSignature(sessionID int64, scope Scope, signature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(sessionID, scope, signature), nil
}

func (m *MockStore) add(sessionID int64, scope Scope, signature string) bool {
	if m.signatures[sessionID] == nil {
		m.signatures[sessionID] = make(map[Scope]map[string]struct{})
	}
	if m.signatures[sessionID][scope] == nil {
		m.signatures[sessionID][scope] = make(map[string]struct{})
	}
	if _, ok := m.signatures[sessionID][scope][signature]; ok {
		return false
	}
	m.signatures[sessionID][scope][signature] = struct{}{}
	return true
}

func (m *MockStore) Commit(sessionID int64, scope Scope, comp [][]int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCalls = append(m.CommitCalls, struct {
		SessionID int64
		Scope     Scope
		Comp      [][]int64
	}{sessionID, scope, comp})
	m.bump(sessionID, comp)
	return m.add(sessionID, scope, teams.Signature(comp)), nil
}

func (m *MockStore) ClearSignatures(sessionID int64, scope *Scope) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls = append(m.ClearCalls, scope)
	n := 0
	if scope == nil {
		for _, sigs := range m.signatures[sessionID] {
			n += len(sigs)
		}
		delete(m.signatures, sessionID)
		return n, nil
	}
	n = len(m.signatures[sessionID][*scope])
	delete(m.signatures[sessionID], *scope)
	return n, nil
}

func (m *MockStore) Coverage(sessionID int64, ids []int64) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CoverageFunc != nil {
		return m.CoverageFunc(sessionID, ids)
	}
	unique := uniqueIDs(ids)
	n := len(unique)
	seen := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m.pairs[sessionID][teams.NewPair(unique[i], unique[j])] > 0 {
				seen++
			}
		}
	}
	return seen, n * (n - 1) / 2, nil
}
