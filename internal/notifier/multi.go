package notifier

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/sourcegraph/conc"
)

var _ Notifier = (*Multi)(nil)

// Multi fans announcements out to several notifiers concurrently. Format
// calls are answered by the primary notifier.
type Multi struct {
	primary Notifier
	mirrors []Notifier
}

// NewMulti creates a Multi. Nil mirrors are ignored.
func NewMulti(primary Notifier, mirrors ...Notifier) *Multi {
	m := &Multi{primary: primary}
	for _, n := range mirrors {
		if n != nil {
			m.mirrors = append(m.mirrors, n)
		}
	}
	return m
}

func (m *Multi) fanOut(event string, send func(n Notifier) error) error {
	all := append([]Notifier{m.primary}, m.mirrors...)
	errs := make([]error, len(all))

	var wg conc.WaitGroup
	for i, n := range all {
		wg.Go(func() {
			errs[i] = send(n)
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		log.Warn("Announcement failed on some notifiers", "event", event, "error", err)
	}
	return err
}

func (m *Multi) SendRoster(channelID string, view RosterView, dryRun bool) error {
	return m.fanOut("roster", func(n Notifier) error { return n.SendRoster(channelID, view, dryRun) })
}

func (m *Multi) SendBracket(channelID string, view BracketView, dryRun bool) error {
	return m.fanOut("bracket", func(n Notifier) error { return n.SendBracket(channelID, view, dryRun) })
}

func (m *Multi) SendArenaRound(channelID string, a *arena.Arena, dryRun bool) error {
	return m.fanOut("arena_round", func(n Notifier) error { return n.SendArenaRound(channelID, a, dryRun) })
}

func (m *Multi) SendStandings(channelID string, a *arena.Arena, dryRun bool) error {
	return m.fanOut("standings", func(n Notifier) error { return n.SendStandings(channelID, a, dryRun) })
}

func (m *Multi) SendPodium(channelID string, a *arena.Arena, dryRun bool) error {
	return m.fanOut("podium", func(n Notifier) error { return n.SendPodium(channelID, a, dryRun) })
}

func (m *Multi) FormatRosterResponse(view RosterView) (any, error) {
	return m.primary.FormatRosterResponse(view)
}

func (m *Multi) FormatBracketResponse(view BracketView) (any, error) {
	return m.primary.FormatBracketResponse(view)
}

func (m *Multi) FormatArenaRoundResponse(a *arena.Arena) (any, error) {
	return m.primary.FormatArenaRoundResponse(a)
}

func (m *Multi) FormatStandingsResponse(a *arena.Arena) (any, error) {
	return m.primary.FormatStandingsResponse(a)
}

func (m *Multi) FormatPodiumResponse(a *arena.Arena) (any, error) {
	return m.primary.FormatPodiumResponse(a)
}

func (m *Multi) FormatRanksResponse(view RanksView) (any, error) {
	return m.primary.FormatRanksResponse(view)
}

func (m *Multi) FormatHelpResponse() (any, error) {
	return m.primary.FormatHelpResponse()
}
