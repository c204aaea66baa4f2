package notifier

import (
	"sync"

	"github.com/mauv0809/squadroll/internal/arena"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for send functions
	SendErr error

	// Call records
	SendRosterCalls []struct {
		ChannelID string
		View      RosterView
		DryRun    bool
	}
	SendBracketCalls []struct {
		ChannelID string
		View      BracketView
	}
	SendArenaRoundCalls []struct {
		ChannelID string
		Arena     *arena.Arena
	}
	SendStandingsCalls []*arena.Arena
	SendPodiumCalls    []*arena.Arena

	// Call records for format functions
	LastRosterResponse  *RosterView
	LastBracketResponse *BracketView
	LastRanksResponse   *RanksView
	LastArenaResponse   *arena.Arena
	FormatCalls         []string
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRosterCalls = nil
	m.SendBracketCalls = nil
	m.SendArenaRoundCalls = nil
	m.SendStandingsCalls = nil
	m.SendPodiumCalls = nil
	m.LastRosterResponse = nil
	m.LastBracketResponse = nil
	m.LastRanksResponse = nil
	m.LastArenaResponse = nil
	m.FormatCalls = nil
}

func (m *Mock) SendRoster(channelID string, view RosterView, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRosterCalls = append(m.SendRosterCalls, struct {
		ChannelID string
		View      RosterView
		DryRun    bool
	}{channelID, view, dryRun})
	return m.SendErr
}

func (m *Mock) SendBracket(channelID string, view BracketView, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBracketCalls = append(m.SendBracketCalls, struct {
		ChannelID string
		View      BracketView
	}{channelID, view})
	return m.SendErr
}

func (m *Mock) SendArenaRound(channelID string, a *arena.Arena, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendArenaRoundCalls = append(m.SendArenaRoundCalls, struct {
		ChannelID string
		Arena     *arena.Arena
	}{channelID, a})
	return m.SendErr
}

func (m *Mock) SendStandings(channelID string, a *arena.Arena, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, a)
	return m.SendErr
}

func (m *Mock) SendPodium(channelID string, a *arena.Arena, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendPodiumCalls = append(m.SendPodiumCalls, a)
	return m.SendErr
}

func (m *Mock) format(name string) {
	m.FormatCalls = append(m.FormatCalls, name)
}

func (m *Mock) FormatRosterResponse(view RosterView) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("roster")
	m.LastRosterResponse = &view
	return "roster", nil
}

func (m *Mock) FormatBracketResponse(view BracketView) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("bracket")
	m.LastBracketResponse = &view
	return "bracket", nil
}

func (m *Mock) FormatArenaRoundResponse(a *arena.Arena) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("arena_round")
	m.LastArenaResponse = a
	return "arena_round", nil
}

func (m *Mock) FormatStandingsResponse(a *arena.Arena) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("standings")
	m.LastArenaResponse = a
	return "standings", nil
}

func (m *Mock) FormatPodiumResponse(a *arena.Arena) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("podium")
	m.LastArenaResponse = a
	return "podium", nil
}

func (m *Mock) FormatRanksResponse(view RanksView) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("ranks")
	m.LastRanksResponse = &view
	return "ranks", nil
}

func (m *Mock) FormatHelpResponse() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format("help")
	return "help", nil
}
