package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/sourcegraph/conc"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

type localClient struct {
	handler Handler
	wg      conc.WaitGroup
}

// Handler consumes an encoded event delivered in-process.
type Handler func(topic EventType, data []byte) error

// EventType represents the type of event/message sent via pubsub.
// It doubles as the topic name and the push route suffix.
type EventType string

const (
	EventRosterRolled   EventType = "roster-rolled"
	EventBracketUpdated EventType = "bracket-updated"
	EventArenaUpdated   EventType = "arena-updated"
)

// Topics lists every event type the service publishes.
var Topics = []EventType{EventRosterRolled, EventBracketUpdated, EventArenaUpdated}

// ArenaView selects which arena announcement an arena event asks for.
type ArenaView string

const (
	ArenaRound     ArenaView = "round"
	ArenaStandings ArenaView = "standings"
	ArenaPodium    ArenaView = "podium"
)

// Event is the payload of every published message. Only the reference of
// the entity is carried; consumers load its current state.
type Event struct {
	ID        string    `msgpack:"id"`
	Type      EventType `msgpack:"type"`
	GuildID   int64     `msgpack:"guild_id"`
	ChannelID string    `msgpack:"channel_id"`
	DryRun    bool      `msgpack:"dry_run,omitempty"`
	CreatedAt time.Time `msgpack:"created_at"`

	// roster-rolled
	RollID     string       `msgpack:"roll_id,omitempty"`
	Title      string       `msgpack:"title,omitempty"`
	Violations []teams.Pair `msgpack:"violations,omitempty"`
	Overflow   bool         `msgpack:"overflow,omitempty"`
	Defaulted  []int64      `msgpack:"defaulted,omitempty"`
	Imported   []int64      `msgpack:"imported,omitempty"`

	// bracket-updated
	TournamentID int64 `msgpack:"tournament_id,omitempty"`
	MatchID      int64 `msgpack:"match_id,omitempty"`

	// arena-updated
	ArenaID int64     `msgpack:"arena_id,omitempty"`
	View    ArenaView `msgpack:"view,omitempty"`
}

// NewEvent stamps an event with a fresh id.
func NewEvent(t EventType, guildID int64, channelID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		GuildID:   guildID,
		ChannelID: channelID,
		CreatedAt: time.Now().UTC(),
	}
}
