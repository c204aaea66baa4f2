package snapshot

import "sync"

// MockStore is an in-memory SnapshotStore for tests.
type MockStore struct {
	mu    sync.Mutex
	snaps map[int64]*Snapshot

	SetCalls []*Snapshot
	SetFunc  func(snap *Snapshot) error
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{snaps: make(map[int64]*Snapshot)}
}

func (m *MockStore) Set(snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, snap)
	if m.SetFunc != nil {
		if err := m.SetFunc(snap); err != nil {
			return err
		}
	}
	m.snaps[snap.GuildID] = snap
	return nil
}

func (m *MockStore) Get(guildID int64) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.snaps[guildID]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}
