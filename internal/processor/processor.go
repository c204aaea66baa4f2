package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/snapshot"
)

// New creates a new Processor.
func New(stores Stores, notifier Notifier, metrics metrics.Metrics, usage metrics.MetricsStore) *Processor {
	return &Processor{
		stores:   stores,
		notifier: notifier,
		metrics:  metrics,
		usage:    usage,
	}
}

// HandleMessage decodes a msgpack event and handles it. It has the shape of
// pubsub.Handler so it can back an in-process client.
func (p *Processor) HandleMessage(topic pubsub.EventType, data []byte) error {
	var ev pubsub.Event
	if err := pubsub.Decode(data, &ev); err != nil {
		return err
	}
	if ev.Type == "" {
		ev.Type = topic
	}
	return p.HandleEvent(ev)
}

// HandleEvent loads the entity an event refers to and announces its current state.
func (p *Processor) HandleEvent(ev pubsub.Event) error {
	start := time.Now()
	log.Info("Handling event", "id", ev.ID, "type", ev.Type, "guild", ev.GuildID, "dry_run", ev.DryRun)

	var err error
	switch ev.Type {
	case pubsub.EventRosterRolled:
		err = p.handleRoster(ev)
	case pubsub.EventBracketUpdated:
		err = p.handleBracket(ev)
	case pubsub.EventArenaUpdated:
		err = p.handleArena(ev)
	default:
		log.Warn("Unknown event type", "type", ev.Type, "id", ev.ID)
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	p.metrics.IncCommand("event:" + string(ev.Type))
	p.metrics.ObserveCommandDuration(time.Since(start).Seconds())
	if err != nil {
		log.Error("Failed to handle event", "error", err, "id", ev.ID, "type", ev.Type)
		return err
	}
	if !ev.DryRun && p.usage != nil {
		p.usage.Increment(metrics.KeyEventsHandled)
	}
	return nil
}

func (p *Processor) handleRoster(ev pubsub.Event) error {
	snap, err := p.stores.Snapshots.Get(ev.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if ev.RollID != "" && snap.RollID.String() != ev.RollID {
		// A newer roll replaced this one before the event was delivered.
		log.Info("Skipping superseded roster", "guild", ev.GuildID, "event_roll", ev.RollID, "current_roll", snap.RollID)
		return nil
	}
	view := notifier.RosterView{
		Snapshot:   snap,
		Violations: ev.Violations,
		Overflow:   ev.Overflow,
		Defaulted:  ev.Defaulted,
		Imported:   ev.Imported,
		Title:      ev.Title,
	}
	if snap.Mode == snapshot.ModeArenaRound && view.Title == "" {
		view.Title = "Arena duos"
	}
	return p.notifier.SendRoster(ev.ChannelID, view, ev.DryRun)
}

func (p *Processor) handleBracket(ev pubsub.Event) error {
	t, err := p.stores.Tournaments.GetTournament(ev.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %d: %w", ev.TournamentID, err)
	}
	participants, err := p.stores.Tournaments.ListParticipants(t.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	matches, err := p.stores.Tournaments.ListMatches(t.ID)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	view := notifier.BracketView{
		Tournament:   t,
		Participants: participants,
		Matches:      matches,
		Highlight:    ev.MatchID,
	}
	return p.notifier.SendBracket(ev.ChannelID, view, ev.DryRun)
}

func (p *Processor) handleArena(ev pubsub.Event) error {
	a, err := p.stores.Arenas.Get(ev.ArenaID)
	if err != nil {
		return fmt.Errorf("failed to load arena %d: %w", ev.ArenaID, err)
	}
	switch ev.View {
	case pubsub.ArenaRound, "":
		return p.notifier.SendArenaRound(ev.ChannelID, a, ev.DryRun)
	case pubsub.ArenaStandings:
		return p.notifier.SendStandings(ev.ChannelID, a, ev.DryRun)
	case pubsub.ArenaPodium:
		return p.notifier.SendPodium(ev.ChannelID, a, ev.DryRun)
	}
	return errors.New("unknown arena view " + string(ev.View))
}
