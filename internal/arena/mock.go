package arena

import "sync"

// MockStore is an in-memory ArenaStore for tests. It is safe for concurrent use.
type MockStore struct {
	mu     sync.Mutex
	arenas map[int64]*Arena
	nextID int64

	SaveCalls []Arena
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{arenas: make(map[int64]*Arena)}
}

func (m *MockStore) Create(a *Arena) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.arenas {
		if existing.GuildID == a.GuildID && existing.State == StateRunning {
			return ErrActiveArena
		}
	}
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.arenas[a.ID] = &cp
	return nil
}

func (m *MockStore) Get(id int64) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.arenas[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockStore) GetActive(guildID int64) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.arenas {
		if a.GuildID == guildID && a.State == StateRunning {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) Save(a *Arena) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.arenas[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.arenas[a.ID] = &cp
	m.SaveCalls = append(m.SaveCalls, cp)
	return nil
}
