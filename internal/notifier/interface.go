package notifier

import (
	"github.com/mauv0809/squadroll/internal/arena"
)

// Notifier defines a high-level interface for presenting and announcing domain events.
// This decouples the rest of the application from the specific chat platform (e.g., Discord, Slack).
type Notifier interface {
	// Announcements. An empty channelID lets the implementation use its default channel, if any.
	SendRoster(channelID string, view RosterView, dryRun bool) error
	SendBracket(channelID string, view BracketView, dryRun bool) error
	SendArenaRound(channelID string, a *arena.Arena, dryRun bool) error
	SendStandings(channelID string, a *arena.Arena, dryRun bool) error
	SendPodium(channelID string, a *arena.Arena, dryRun bool) error

	// For formatting responses for slash commands
	FormatRosterResponse(view RosterView) (any, error)
	FormatBracketResponse(view BracketView) (any, error)
	FormatArenaRoundResponse(a *arena.Arena) (any, error)
	FormatStandingsResponse(a *arena.Arena) (any, error)
	FormatPodiumResponse(a *arena.Arena) (any, error)
	FormatRanksResponse(view RanksView) (any, error)
	FormatHelpResponse() (any, error)
}
