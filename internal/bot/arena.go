package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
)

type arenaParams struct {
	Rounds int `opt:"rounds" validate:"gte=0,lte=15"`
}

type placementsParams struct {
	Placements string `opt:"placements" validate:"required,max=500"`
}

func (b *Bot) activeArena(inv *Invocation) (*arena.Arena, error) {
	a, err := b.Arenas.GetActive(inv.GuildID)
	if errors.Is(err, arena.ErrNotFound) {
		return nil, ErrNoArena
	}
	return a, err
}

func (b *Bot) arenaEvent(inv *Invocation, a *arena.Arena, view pubsub.ArenaView, channelID string) {
	ev := pubsub.NewEvent(pubsub.EventArenaUpdated, inv.GuildID, channelID)
	ev.ArenaID = a.ID
	ev.View = view
	b.publish(inv, ev)
}

// postRound stores the duos of the current round as the guild snapshot so
// /go can move them into voice channels.
func (b *Bot) postRound(ctx context.Context, inv *Invocation, a *arena.Arena) error {
	duos := a.CurrentDuos()
	if len(duos) == 0 {
		return nil
	}
	ids := make([]int64, 0, 2*len(duos))
	for _, d := range duos {
		ids = append(ids, d[0], d[1])
	}
	res, err := b.Resolver.Resolve(ctx, ids, false)
	if err != nil {
		return err
	}
	rating := make(map[int64]float64, len(res.Players))
	for _, p := range res.Players {
		rating[p.ID] = p.Rating
	}
	assignment := teams.Assignment{}
	for _, d := range duos {
		assignment.Teams = append(assignment.Teams, teams.Team{{ID: d[0], Rating: rating[d[0]]}, {ID: d[1], Rating: rating[d[1]]}})
		assignment.Sizes = append(assignment.Sizes, 2)
	}
	snap := snapshot.NewSnapshot(inv.GuildID, inv.UserID, assignment, snapshot.ModeArenaRound)
	snap.Params["arena_id"] = fmt.Sprint(a.ID)
	snap.Params["round"] = fmt.Sprint(a.CurrentRound)
	if err := b.Snapshots.Set(snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	b.bump(metrics.KeyArenaRounds)
	return nil
}

func (b *Bot) arenaStart(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := arenaParams{Rounds: inv.Options.Int("rounds", 0)}
	if err := b.check(params); err != nil {
		return nil, err
	}
	ids, err := b.players(inv)
	if err != nil {
		return nil, err
	}
	a, err := arena.New(inv.GuildID, inv.UserID, ids, params.Rounds)
	if err != nil {
		return nil, err
	}
	if err := b.Arenas.Create(a); err != nil {
		return nil, err
	}
	b.bump(metrics.KeyArenas)
	log.Info("Started arena", "guild", inv.GuildID, "arena", a.ID, "players", len(ids), "rounds", a.RoundsTotal)
	if err := b.postRound(ctx, inv, a); err != nil {
		// Leave no running arena behind a failed round snapshot.
		if cerr := a.Cancel(); cerr == nil {
			if serr := b.Arenas.Save(a); serr != nil {
				log.Error("Failed to cancel arena after snapshot error", "guild", inv.GuildID, "arena", a.ID, "error", serr)
			}
		}
		return nil, err
	}
	b.arenaEvent(inv, a, pubsub.ArenaRound, "")
	return formatted(b.Notifier.FormatArenaRoundResponse(a))
}

func (b *Bot) arenaRound(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	a, err := b.activeArena(inv)
	if err != nil {
		return nil, err
	}
	if err := b.postRound(ctx, inv, a); err != nil {
		return nil, err
	}
	return formatted(b.Notifier.FormatArenaRoundResponse(a))
}

func (b *Bot) arenaStatus(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	a, err := b.activeArena(inv)
	if err != nil {
		return nil, err
	}
	return formatted(b.Notifier.FormatStandingsResponse(a))
}

// afterRoundChange answers a report or advance. A finished arena shows its
// podium; a new round is posted to the channel and becomes the snapshot.
func (b *Bot) afterRoundChange(ctx context.Context, inv *Invocation, a *arena.Arena, note string) (*discordgo.InteractionResponseData, error) {
	if a.State == arena.StateFinished {
		log.Info("Arena finished", "guild", inv.GuildID, "arena", a.ID)
		b.arenaEvent(inv, a, pubsub.ArenaPodium, "")
		data, err := formatted(b.Notifier.FormatPodiumResponse(a))
		if err != nil {
			return nil, err
		}
		return withNote(data, note), nil
	}
	if err := b.postRound(ctx, inv, a); err != nil {
		return nil, err
	}
	b.arenaEvent(inv, a, pubsub.ArenaRound, inv.ChannelID)
	data, err := formatted(b.Notifier.FormatStandingsResponse(a))
	if err != nil {
		return nil, err
	}
	return withNote(data, note), nil
}

func (b *Bot) arenaReport(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := placementsParams{Placements: inv.Options.String("placements", "")}
	if err := b.check(params); err != nil {
		return nil, err
	}
	a, err := b.activeArena(inv)
	if err != nil {
		return nil, err
	}
	res, err := a.Report(params.Placements)
	if err != nil {
		return nil, err
	}
	if err := b.Arenas.Save(a); err != nil {
		return nil, err
	}
	b.Metrics.IncArenaReports()
	log.Info("Recorded arena placements", "guild", inv.GuildID, "arena", a.ID, "round", res.Round, "count", len(res.Placements), "advanced", res.Advanced)

	lines := make([]string, len(res.Placements))
	for i, p := range res.Placements {
		lines[i] = fmt.Sprintf("Duo %d %s: top %d, +%d each", p.Index+1, mentions.Join(p.Duo[:], " & "), p.Rank, p.Points)
	}
	note := fmt.Sprintf("📝 Round %d\n%s", res.Round, strings.Join(lines, "\n"))
	if !res.Advanced {
		data, err := formatted(b.Notifier.FormatStandingsResponse(a))
		if err != nil {
			return nil, err
		}
		pending := make([]string, len(a.Pending()))
		for i, n := range a.Pending() {
			pending[i] = fmt.Sprint(n)
		}
		return withNote(data, note+"\n⏳ Waiting for duo(s) "+strings.Join(pending, ", ")), nil
	}
	return b.afterRoundChange(ctx, inv, a, note)
}

func (b *Bot) arenaAdvance(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	a, err := b.activeArena(inv)
	if err != nil {
		return nil, err
	}
	skipped := len(a.Pending())
	if err := a.Advance(); err != nil {
		return nil, err
	}
	if err := b.Arenas.Save(a); err != nil {
		return nil, err
	}
	log.Info("Advanced arena", "guild", inv.GuildID, "arena", a.ID, "round", a.CurrentRound, "unreported", skipped)
	note := "⏭️ Round advanced."
	if skipped > 0 {
		note = fmt.Sprintf("⏭️ Round advanced, %d duo(s) scored nothing.", skipped)
	}
	return b.afterRoundChange(ctx, inv, a, note)
}

func (b *Bot) arenaStop(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	a, err := b.activeArena(inv)
	if err != nil {
		return nil, err
	}
	if err := a.Stop(); err != nil {
		return nil, err
	}
	if err := b.Arenas.Save(a); err != nil {
		return nil, err
	}
	log.Info("Stopped arena", "guild", inv.GuildID, "arena", a.ID)
	b.arenaEvent(inv, a, pubsub.ArenaPodium, "")
	return formatted(b.Notifier.FormatPodiumResponse(a))
}

func (b *Bot) arenaCancel(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	a, err := b.activeArena(inv)
	if err != nil {
		return nil, err
	}
	if err := a.Cancel(); err != nil {
		return nil, err
	}
	if err := b.Arenas.Save(a); err != nil {
		return nil, err
	}
	log.Info("Cancelled arena", "guild", inv.GuildID, "arena", a.ID)
	return message("🛑 Arena cancelled."), nil
}
