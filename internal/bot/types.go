package bot

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/guildlock"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/session"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/mauv0809/squadroll/internal/voice"
)

// Permission bits that grant admin commands.
const (
	permAdministrator int64 = 1 << 3
	permManageGuild   int64 = 1 << 5
)

var (
	ErrForbidden     = errors.New("this command is reserved for admins")
	ErrGuildOnly     = errors.New("this command only works in a server")
	ErrNotInVoice    = errors.New("no members given and you are not in a voice channel")
	ErrNoSnapshot    = errors.New("no teams rolled yet, use /team or /teamroll first")
	ErrUnknownCmd    = errors.New("unknown command")
	ErrInvalidOption = errors.New("invalid option")
	ErrNoTournament  = errors.New("no active tournament, use /tournament create first")
	ErrNoArena       = errors.New("no arena is running, use /arena start first")
	ErrTeamAdd       = errors.New("team tournaments take their teams from /tournament_use_last")
)

// Deps are the collaborators of the bot.
type Deps struct {
	Snapshots   snapshot.SnapshotStore
	Sessions    session.SessionStore
	Tournaments bracket.TournamentStore
	Arenas      arena.ArenaStore
	Ratings     ratings.RatingStore
	Resolver    *ratings.Resolver
	Voice       voice.VoiceManager
	// Presence answers voice membership questions. It may only know members
	// while a gateway connection is open.
	Presence    voice.API
	Notifier    notifier.Notifier
	PubSub      pubsub.PubSubClient
	Metrics     metrics.Metrics
	Usage       metrics.MetricsStore
	Locks       *guildlock.Locker
	Partitioner teams.Partitioner
	Searcher    *teams.Searcher

	OwnerID  int64
	Attempts int
	VoiceTTL time.Duration
	Now      func() time.Time
}

// Bot routes slash command interactions to their handlers.
type Bot struct {
	Deps
	validate *validator.Validate
	handlers map[string]command
}

// command is a registered handler. Admin commands are rejected for other
// members before the handler runs; mutating ones hold the guild lock.
type command struct {
	run    handlerFunc
	admin  bool
	mutate bool
	guild  bool
}

// Invocation is a parsed slash command.
type Invocation struct {
	// Name is the command path, "tournament create" for subcommands.
	Name      string
	GuildID   int64
	ChannelID string
	UserID    int64
	Admin     bool
	Options   Options
	// DryRun turns announcements into log lines.
	DryRun bool
}
