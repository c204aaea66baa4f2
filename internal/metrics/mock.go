package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	commands          map[string]int
	commandDurations  []float64
	rolls             int
	searchExhausted   int
	arenaReports      int
	bracketReports    int
	notifSent         int
	notifFailed       int
	riotLookups       int
	riotFailures      int
	voiceMoves        int
	voiceMoveFailures int
	channelsSwept     int
	startupTime       float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		commands:         make(map[string]int),
		commandDurations: make([]float64, 0),
	}
}

func (m *Mock) inc(field *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*field++
}

func (m *Mock) get(field *int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *field
}

func (m *Mock) IncCommand(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[name]++
}

func (m *Mock) ObserveCommandDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandDurations = append(m.commandDurations, duration)
}

func (m *Mock) IncRolls()             { m.inc(&m.rolls) }
func (m *Mock) IncSearchExhausted()   { m.inc(&m.searchExhausted) }
func (m *Mock) IncArenaReports()      { m.inc(&m.arenaReports) }
func (m *Mock) IncBracketReports()    { m.inc(&m.bracketReports) }
func (m *Mock) IncNotifSent()         { m.inc(&m.notifSent) }
func (m *Mock) IncNotifFailed()       { m.inc(&m.notifFailed) }
func (m *Mock) IncRiotLookups()       { m.inc(&m.riotLookups) }
func (m *Mock) IncRiotFailures()      { m.inc(&m.riotFailures) }
func (m *Mock) IncVoiceMoves()        { m.inc(&m.voiceMoves) }
func (m *Mock) IncVoiceMoveFailures() { m.inc(&m.voiceMoveFailures) }

func (m *Mock) AddChannelsSwept(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelsSwept += n
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Commands returns how often IncCommand was called for name.
func (m *Mock) Commands(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commands[name]
}

// Rolls returns the number of times IncRolls was called.
func (m *Mock) Rolls() int { return m.get(&m.rolls) }

// SearchExhausted returns the number of times IncSearchExhausted was called.
func (m *Mock) SearchExhausted() int { return m.get(&m.searchExhausted) }

func (m *Mock) ArenaReports() int      { return m.get(&m.arenaReports) }
func (m *Mock) BracketReports() int    { return m.get(&m.bracketReports) }
func (m *Mock) NotifSent() int         { return m.get(&m.notifSent) }
func (m *Mock) NotifFailed() int       { return m.get(&m.notifFailed) }
func (m *Mock) RiotLookups() int       { return m.get(&m.riotLookups) }
func (m *Mock) RiotFailures() int      { return m.get(&m.riotFailures) }
func (m *Mock) VoiceMoves() int        { return m.get(&m.voiceMoves) }
func (m *Mock) VoiceMoveFailures() int { return m.get(&m.voiceMoveFailures) }

// ChannelsSwept returns the sum passed to AddChannelsSwept.
func (m *Mock) ChannelsSwept() int { return m.get(&m.channelsSwept) }

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}

// MockStore is an in-memory MetricsStore.
type MockStore struct {
	mu     sync.Mutex
	values map[string]int
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{values: make(map[string]int)}
}

func (m *MockStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key]++
}

func (m *MockStore) Add(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.values[key] += n
	}
}

func (m *MockStore) Get(key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MockStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}
