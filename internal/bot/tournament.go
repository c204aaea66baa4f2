package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/snapshot"
)

type tournamentParams struct {
	Name   string `opt:"name" validate:"required,max=100"`
	Kind   string `opt:"kind" validate:"oneof=solo team"`
	BestOf int    `opt:"best_of" validate:"gte=1,lte=9"`
}

type reportParams struct {
	MatchID int64 `opt:"match_id" validate:"required,gte=1"`
	Winner  int64 `opt:"winner" validate:"required"`
	Score1  int   `opt:"p1_score" validate:"gte=0"`
	Score2  int   `opt:"p2_score" validate:"gte=0"`
}

const maxPreviewLines = 60

func (b *Bot) activeTournament(inv *Invocation) (*bracket.Tournament, error) {
	t, err := b.Tournaments.GetActiveTournament(inv.GuildID)
	if errors.Is(err, bracket.ErrNotFound) {
		return nil, ErrNoTournament
	}
	return t, err
}

func (b *Bot) bracketView(t *bracket.Tournament, highlight int64) (notifier.BracketView, error) {
	participants, err := b.Tournaments.ListParticipants(t.ID)
	if err != nil {
		return notifier.BracketView{}, err
	}
	matches, err := b.Tournaments.ListMatches(t.ID)
	if err != nil {
		return notifier.BracketView{}, err
	}
	return notifier.BracketView{Tournament: t, Participants: participants, Matches: matches, Highlight: highlight}, nil
}

func (b *Bot) bracketEvent(inv *Invocation, t *bracket.Tournament, matchID int64) {
	ev := pubsub.NewEvent(pubsub.EventBracketUpdated, inv.GuildID, "")
	ev.TournamentID = t.ID
	ev.MatchID = matchID
	b.publish(inv, ev)
}

// byRating orders competitors by rating descending, keeping input order on ties.
func byRating(cs []bracket.Competitor) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].Rating > cs[j].Rating })
}

func (b *Bot) tournamentCreate(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := tournamentParams{
		Name:   inv.Options.String("name", ""),
		Kind:   inv.Options.String("kind", string(bracket.KindSolo)),
		BestOf: inv.Options.Int("best_of", 1),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}
	t := &bracket.Tournament{
		GuildID:   inv.GuildID,
		Name:      params.Name,
		Kind:      bracket.Kind(params.Kind),
		BestOf:    params.BestOf,
		CreatedBy: inv.UserID,
	}
	if err := b.Tournaments.CreateTournament(t); err != nil {
		return nil, err
	}
	log.Info("Created tournament", "guild", inv.GuildID, "tournament", t.ID, "kind", t.Kind)
	hint := "Add players with `/tournament add` or `/tournament_use_last`."
	if t.Kind == bracket.KindTeam {
		hint = "Register the last teams with `/tournament_use_last`."
	}
	return message("🏆 Tournament **%s** created (id `%d`, %s, best of %d). %s", t.Name, t.ID, t.Kind, t.BestOf, hint), nil
}

func (b *Bot) tournamentAdd(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	t, err := b.activeTournament(inv)
	if err != nil {
		return nil, err
	}
	if t.Kind == bracket.KindTeam {
		return nil, ErrTeamAdd
	}
	ids, err := b.players(inv)
	if err != nil {
		return nil, err
	}
	res, err := b.Resolver.Resolve(ctx, ids, false)
	if err != nil {
		return nil, err
	}
	competitors := make([]bracket.Competitor, len(res.Players))
	for i, p := range res.Players {
		competitors[i] = bracket.Competitor{Members: []int64{p.ID}, Rating: p.Rating}
	}
	byRating(competitors)
	added, err := b.Tournaments.AddParticipants(t.ID, competitors)
	if err != nil {
		return nil, err
	}
	log.Info("Added participants", "guild", inv.GuildID, "tournament", t.ID, "added", added)
	return message("➕ Added %d player(s) to **%s** (%d already registered).", added, t.Name, len(competitors)-added), nil
}

func (b *Bot) tournamentStart(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	t, err := b.activeTournament(inv)
	if err != nil {
		return nil, err
	}
	if _, err := b.Tournaments.Start(t.ID); err != nil {
		return nil, err
	}
	b.bump(metrics.KeyTournaments)
	if t, err = b.Tournaments.GetTournament(t.ID); err != nil {
		return nil, err
	}
	view, err := b.bracketView(t, 0)
	if err != nil {
		return nil, err
	}
	log.Info("Started tournament", "guild", inv.GuildID, "tournament", t.ID, "participants", len(view.Participants))
	b.bracketEvent(inv, t, 0)
	return formatted(b.Notifier.FormatBracketResponse(view))
}

func (b *Bot) tournamentView(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	t, err := b.activeTournament(inv)
	if err != nil {
		return nil, err
	}
	view, err := b.bracketView(t, 0)
	if err != nil {
		return nil, err
	}
	return formatted(b.Notifier.FormatBracketResponse(view))
}

func (b *Bot) tournamentReport(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := reportParams{
		MatchID: int64(inv.Options.Int("match_id", 0)),
		Winner:  inv.Options.User("winner"),
		Score1:  inv.Options.Int("p1_score", 0),
		Score2:  inv.Options.Int("p2_score", 0),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}
	t, err := b.activeTournament(inv)
	if err != nil {
		return nil, err
	}
	out, err := b.Tournaments.ReportMatch(t.ID, params.MatchID, params.Winner, params.Score1, params.Score2)
	if err != nil {
		return nil, err
	}
	b.Metrics.IncBracketReports()
	if t, err = b.Tournaments.GetTournament(t.ID); err != nil {
		return nil, err
	}
	view, err := b.bracketView(t, params.MatchID)
	if err != nil {
		return nil, err
	}
	data, err := formatted(b.Notifier.FormatBracketResponse(view))
	if err != nil {
		return nil, err
	}
	note := fmt.Sprintf("✅ Match `%d` reported.", params.MatchID)
	if out.Champion != nil {
		note = fmt.Sprintf("👑 %s won **%s**!", mentions.Join(out.Champion.Members, " & "), t.Name)
		log.Info("Tournament finished", "guild", inv.GuildID, "tournament", t.ID)
	}
	b.bracketEvent(inv, t, params.MatchID)
	return withNote(data, note), nil
}

func (b *Bot) tournamentCancel(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	t, err := b.activeTournament(inv)
	if err != nil {
		return nil, err
	}
	if err := b.Tournaments.Cancel(t.ID); err != nil {
		return nil, err
	}
	log.Info("Cancelled tournament", "guild", inv.GuildID, "tournament", t.ID)
	return message("🛑 Tournament **%s** cancelled.", t.Name), nil
}

// snapshotCompetitors lists the snapshot as competitors: every player team by
// team, strongest first within a team, or every team by total rating.
func snapshotCompetitors(snap *snapshot.Snapshot, kind bracket.Kind) []bracket.Competitor {
	var out []bracket.Competitor
	if kind == bracket.KindTeam {
		for _, team := range snap.Teams {
			out = append(out, bracket.Competitor{Members: team.IDs(), Rating: team.Total()})
		}
		byRating(out)
		return out
	}
	for _, team := range snap.Teams {
		block := make([]bracket.Competitor, len(team))
		for i, p := range team {
			block[i] = bracket.Competitor{Members: []int64{p.ID}, Rating: p.Rating}
		}
		byRating(block)
		out = append(out, block...)
	}
	return out
}

func (b *Bot) tournamentUseLast(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := tournamentParams{
		Name:   inv.Options.String("name", "Tournament"),
		Kind:   inv.Options.String("kind", string(bracket.KindSolo)),
		BestOf: inv.Options.Int("best_of", 1),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}
	dryRun := inv.Options.Bool("dry_run", false)
	snap, err := b.lastSnapshot(inv)
	if err != nil {
		return nil, err
	}

	t, err := b.Tournaments.GetActiveTournament(inv.GuildID)
	if err != nil && !errors.Is(err, bracket.ErrNotFound) {
		return nil, err
	}
	kind := bracket.Kind(params.Kind)
	registered := map[string]struct{}{}
	if t != nil {
		kind = t.Kind
		if t.State != bracket.StateSetup {
			return nil, bracket.ErrNotSetup
		}
		participants, err := b.Tournaments.ListParticipants(t.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range participants {
			registered[p.Key()] = struct{}{}
		}
	}
	competitors := snapshotCompetitors(snap, kind)

	var lines []string
	planned := 0
	seed := len(registered) + 1
	for _, c := range competitors {
		label := mentions.Join(c.Members, " & ")
		if _, ok := registered[c.Key()]; ok {
			lines = append(lines, fmt.Sprintf("— %s · %.0f (already registered)", label, c.Rating))
			continue
		}
		lines = append(lines, fmt.Sprintf("%d. %s · %.0f", seed, label, c.Rating))
		seed++
		planned++
	}
	if len(lines) > maxPreviewLines {
		lines = append(lines[:maxPreviewLines], fmt.Sprintf("… and %d more", len(lines)-maxPreviewLines))
	}

	name := params.Name
	if t != nil {
		name = t.Name
	}
	if dryRun {
		header := fmt.Sprintf("🧪 Preview for **%s** (%s, %s mode): %d to add.", name, kind, snap.Mode, planned)
		if t == nil {
			header += " The tournament would be created."
		}
		return ephemeral(header + "\n" + strings.Join(lines, "\n")), nil
	}

	created := false
	if t == nil {
		t = &bracket.Tournament{GuildID: inv.GuildID, Name: name, Kind: kind, BestOf: params.BestOf, CreatedBy: inv.UserID}
		if err := b.Tournaments.CreateTournament(t); err != nil {
			return nil, err
		}
		created = true
	}
	added, err := b.Tournaments.AddParticipants(t.ID, competitors)
	if err != nil {
		return nil, err
	}
	log.Info("Imported last teams", "guild", inv.GuildID, "tournament", t.ID, "kind", kind, "added", added, "created", created)
	header := fmt.Sprintf("👥 Added %d to **%s** (id `%d`, %s).", added, t.Name, t.ID, kind)
	if created {
		header += " A new tournament was created."
	}
	return message("%s\n%s", header, strings.Join(lines, "\n")), nil
}
