package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/session"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/mauv0809/squadroll/internal/voice"
)

type rollParams struct {
	Mode       string `opt:"mode" validate:"omitempty,oneof=balanced random"`
	TeamCount  int    `opt:"team_count" validate:"gte=2,lte=6"`
	ChannelTTL int    `opt:"channel_ttl" validate:"gte=1,lte=1440"`
	Attempts   int    `opt:"attempts" validate:"gte=0"`
	Session    string `opt:"session" validate:"max=64"`
}

type voiceParams struct {
	ChannelTTL int `opt:"channel_ttl" validate:"gte=1,lte=1440"`
}

type sessionParams struct {
	Session string `opt:"session" validate:"required,max=64"`
}

// autoSession names the default session of a day.
func autoSession(now time.Time) string {
	return "auto-" + now.UTC().Format("20060102")
}

func (b *Bot) ttl(inv *Invocation) time.Duration {
	if inv.Options.Has("channel_ttl") {
		return time.Duration(inv.Options.Int("channel_ttl", 0)) * time.Minute
	}
	return b.VoiceTTL
}

// request resolves ratings for ids and builds a partition request from the
// constraint options.
func (b *Bot) request(ctx context.Context, inv *Invocation, ids []int64, teamCount int, sizes string, autoImport bool) (teams.Request, *ratings.Resolution, error) {
	if err := teams.ValidateRoll(teamCount, len(ids)); err != nil {
		return teams.Request{}, nil, err
	}
	res, err := b.Resolver.Resolve(ctx, ids, autoImport)
	if err != nil {
		return teams.Request{}, nil, err
	}
	req := teams.Request{
		Players: res.Players,
		Sizes:   teams.ParseSizes(sizes, len(ids), teamCount),
		Groups:  teams.BuildGroups(res.Players, inv.Options.String("with_groups", "")),
		Avoid:   teams.ParseAvoidPairs(inv.Options.String("avoid_pairs", "")),
		Mode:    teams.ParseMode(inv.Options.String("mode", string(teams.ModeBalanced))),
	}
	return req, res, nil
}

// ignoredSizes returns sizes when it cannot split total players into k teams
// and the roll fell back to even sizes.
func ignoredSizes(inv *Invocation, sizes string, total, k int) string {
	if err := teams.CheckSizes(sizes, total, k); err != nil {
		log.Warn("Ignoring sizes option", "guild", inv.GuildID, "error", err)
		return sizes
	}
	return ""
}

func (b *Bot) saveSnapshot(inv *Invocation, a teams.Assignment, mode, sessionName string) (*snapshot.Snapshot, error) {
	snap := snapshot.NewSnapshot(inv.GuildID, inv.UserID, a, mode)
	snap.Session = sessionName
	for _, key := range []string{"sizes", "with_groups", "avoid_pairs"} {
		if v := inv.Options.String(key, ""); v != "" {
			snap.Params[key] = v
		}
	}
	if err := b.Snapshots.Set(snap); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snap, nil
}

func (b *Bot) rosterEvent(inv *Invocation, view notifier.RosterView) {
	ev := pubsub.NewEvent(pubsub.EventRosterRolled, inv.GuildID, "")
	ev.RollID = view.Snapshot.RollID.String()
	ev.Violations = view.Violations
	ev.Overflow = view.Overflow
	ev.Defaulted = view.Defaulted
	ev.Imported = view.Imported
	b.publish(inv, ev)
}

func (b *Bot) team(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := rollParams{
		Mode:       inv.Options.String("mode", ""),
		TeamCount:  inv.Options.Int("team_count", 2),
		ChannelTTL: inv.Options.Int("channel_ttl", int(b.VoiceTTL/time.Minute)),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}
	ids, err := b.players(inv)
	if err != nil {
		return nil, err
	}
	req, res, err := b.request(ctx, inv, ids, params.TeamCount, inv.Options.String("sizes", ""), inv.Options.Bool("auto_import_riot", true))
	if err != nil {
		return nil, err
	}

	result := b.Partitioner.Partition(req)
	snap, err := b.saveSnapshot(inv, result.Assignment, string(req.Mode), "")
	if err != nil {
		return nil, err
	}
	b.Metrics.IncRolls()
	b.bump(metrics.KeyRolls)
	if result.Overflow {
		log.Warn("Group constraints overflowed a team", "guild", inv.GuildID, "roll", snap.RollID)
	}
	log.Info("Rolled teams", "guild", inv.GuildID, "roll", snap.RollID, "players", len(ids), "spread", result.Spread())

	view := notifier.RosterView{
		Snapshot:   snap,
		Violations: result.Violations,
		Overflow:   result.Overflow,
		Defaulted:  res.Defaulted,
		Imported:   res.Imported,
	}
	view.IgnoredSizes = ignoredSizes(inv, inv.Options.String("sizes", ""), len(ids), params.TeamCount)
	data, err := formatted(b.Notifier.FormatRosterResponse(view))
	if err != nil {
		return nil, err
	}
	if inv.Options.Bool("create_voice", false) {
		withNote(data, b.deployNote(ctx, inv, snap))
	}
	b.rosterEvent(inv, view)
	return data, nil
}

func (b *Bot) teamroll(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := rollParams{
		Mode:       inv.Options.String("mode", ""),
		TeamCount:  inv.Options.Int("team_count", 2),
		ChannelTTL: 1,
		Attempts:   inv.Options.Int("attempts", b.Attempts),
		Session:    inv.Options.String("session", autoSession(b.Now())),
	}
	if err := b.check(params); err != nil {
		return nil, err
	}

	sizes := inv.Options.String("sizes", "")
	ids, err := b.players(inv)
	if errors.Is(err, ErrNotInVoice) {
		// Reroll the last roster.
		snap, serr := b.Snapshots.Get(inv.GuildID)
		if serr != nil {
			return nil, err
		}
		for _, p := range snap.Players() {
			ids = append(ids, p.ID)
		}
		if sizes == "" && !inv.Options.Has("team_count") {
			params.TeamCount = len(snap.Sizes)
			sizes = joinSizes(snap.Sizes)
		}
		err = nil
	}
	if err != nil {
		return nil, err
	}
	req, res, err := b.request(ctx, inv, ids, params.TeamCount, sizes, true)
	if err != nil {
		return nil, err
	}

	sess, err := b.Sessions.GetOrCreate(inv.GuildID, params.Session)
	if err != nil {
		return nil, err
	}
	counts, err := b.Sessions.PairCounts(sess.ID)
	if err != nil {
		return nil, err
	}
	scope := session.Scope{PlayerFP: teams.PlayerFingerprint(ids), SizeFP: teams.SizeFingerprint(req.Sizes)}
	seen, err := b.Sessions.Signatures(sess.ID, scope)
	if err != nil {
		return nil, err
	}

	out := b.Searcher.Search(req, teams.SearchOptions{Attempts: params.Attempts, PairCounts: counts, Seen: seen})
	committed := false
	if inv.Options.Bool("commit", true) {
		committed, err = b.Sessions.Commit(sess.ID, scope, out.IDs())
		if err != nil {
			return nil, err
		}
	}
	seenPairs, possible, err := b.Sessions.Coverage(sess.ID, ids)
	if err != nil {
		return nil, err
	}

	snap, err := b.saveSnapshot(inv, out.Assignment, string(req.Mode), sess.Name)
	if err != nil {
		return nil, err
	}
	b.Metrics.IncRolls()
	b.bump(metrics.KeySessionRolls)
	if out.Exhausted {
		b.Metrics.IncSearchExhausted()
		log.Warn("Every composition was seen before", "guild", inv.GuildID, "session", sess.Name, "tried", out.Tried)
	}
	log.Info("Rolled teams", "guild", inv.GuildID, "session", sess.Name, "roll", snap.RollID, "penalty", out.Penalty, "spread", out.Spread)

	view := notifier.RosterView{
		Snapshot:   snap,
		Violations: out.Violations,
		Overflow:   out.Overflow,
		Defaulted:  res.Defaulted,
		Imported:   res.Imported,
		Search: &notifier.SearchSummary{
			Session:   sess.Name,
			Penalty:   out.Penalty,
			Spread:    out.Spread,
			Exhausted: out.Exhausted,
			Tried:     out.Tried,
			Committed: committed,
			Seen:      seenPairs,
			Possible:  possible,
		},
		IgnoredSizes: ignoredSizes(inv, sizes, len(ids), params.TeamCount),
	}
	data, err := formatted(b.Notifier.FormatRosterResponse(view))
	if err != nil {
		return nil, err
	}
	b.rosterEvent(inv, view)
	return data, nil
}

func joinSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "/")
}

func (b *Bot) teamrollEnd(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	params := sessionParams{Session: inv.Options.String("session", "")}
	if err := b.check(params); err != nil {
		return nil, err
	}
	ended, err := b.Sessions.End(inv.GuildID, params.Session)
	if err != nil {
		return nil, err
	}
	if !ended {
		return ephemeral(fmt.Sprintf("ℹ️ Session `%s` not found.", params.Session)), nil
	}
	log.Info("Ended session", "guild", inv.GuildID, "session", params.Session)
	return ephemeral(fmt.Sprintf("🧹 Session `%s` ended and its history cleared.", params.Session)), nil
}

func (b *Bot) teamrollReset(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	snap, snapErr := b.Snapshots.Get(inv.GuildID)
	if snapErr != nil && !errors.Is(snapErr, snapshot.ErrNotFound) {
		return nil, snapErr
	}
	name := inv.Options.String("session", "")
	if name == "" {
		name = autoSession(b.Now())
		if snap != nil && snap.Session != "" {
			name = snap.Session
		}
	}
	sess, err := b.Sessions.Get(inv.GuildID, name)
	if err != nil {
		return nil, err
	}

	var scope *session.Scope
	if inv.Options.Bool("for_current_snapshot", false) {
		if snap == nil {
			return nil, ErrNoSnapshot
		}
		scope = &session.Scope{
			PlayerFP: teams.PlayerFingerprint(snapshotIDs(snap)),
			SizeFP:   teams.SizeFingerprint(snap.Sizes),
		}
	}
	n, err := b.Sessions.ClearSignatures(sess.ID, scope)
	if err != nil {
		return nil, err
	}
	log.Info("Cleared signatures", "guild", inv.GuildID, "session", name, "scoped", scope != nil, "count", n)
	where := "the whole session"
	if scope != nil {
		where = "the current roster"
	}
	return ephemeral(fmt.Sprintf("♻️ Forgot %d composition(s) of %s in `%s`.", n, where, name)), nil
}

func snapshotIDs(snap *snapshot.Snapshot) []int64 {
	players := snap.Players()
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func (b *Bot) teamrollStats(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	snap, err := b.Snapshots.Get(inv.GuildID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	name := inv.Options.String("session", snap.Session)
	if name == "" {
		name = autoSession(b.Now())
	}
	sess, err := b.Sessions.Get(inv.GuildID, name)
	if err != nil {
		return nil, err
	}
	ids := snapshotIDs(snap)
	seen, possible, err := b.Sessions.Coverage(sess.ID, ids)
	if err != nil {
		return nil, err
	}
	pct := 0.0
	if possible > 0 {
		pct = 100 * float64(seen) / float64(possible)
	}
	return message("📊 Session `%s`: %d/%d teammate pairs seen for these %d players (%.0f%%).", name, seen, possible, len(ids), pct), nil
}

func (b *Bot) lastSnapshot(inv *Invocation) (*snapshot.Snapshot, error) {
	snap, err := b.Snapshots.Get(inv.GuildID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	return snap, err
}

func (b *Bot) teamLast(_ context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	snap, err := b.lastSnapshot(inv)
	if err != nil {
		return nil, err
	}
	return formatted(b.Notifier.FormatRosterResponse(notifier.RosterView{Snapshot: snap, Title: "📌 Last teams"}))
}

func (b *Bot) deploy(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	snap, err := b.lastSnapshot(inv)
	if err != nil {
		return nil, err
	}
	if err := b.check(voiceParams{ChannelTTL: int(b.ttl(inv) / time.Minute)}); err != nil {
		return nil, err
	}
	res, err := b.Voice.Deploy(ctx, voice.DeployRequest{GuildID: inv.GuildID, Teams: snap.IDs(), TTL: b.ttl(inv)})
	if err != nil {
		return nil, err
	}
	return message("%s", deployLine(res)), nil
}

func (b *Bot) deployNote(ctx context.Context, inv *Invocation, snap *snapshot.Snapshot) string {
	res, err := b.Voice.Deploy(ctx, voice.DeployRequest{GuildID: inv.GuildID, Teams: snap.IDs(), TTL: b.ttl(inv)})
	if err != nil {
		log.Error("Failed to deploy teams", "error", err, "guild", inv.GuildID)
		return "⚠️ Could not create the voice channels."
	}
	return deployLine(res)
}

func deployLine(res *voice.DeployResult) string {
	line := fmt.Sprintf("🔊 Moved %d player(s) into %d channel(s) (%d created, %d reused).",
		res.Moved, len(res.ChannelIDs), res.Created, res.Reused)
	if res.Skipped > 0 {
		line += fmt.Sprintf(" %d not in voice or already placed.", res.Skipped)
	}
	if res.Failed > 0 {
		line += fmt.Sprintf(" %d move(s) failed.", res.Failed)
	}
	return line
}

func (b *Bot) disband(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	n, err := b.Voice.Disband(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return ephemeral("ℹ️ No team voice channels to delete."), nil
	}
	if b.Usage != nil {
		b.Usage.Add(metrics.KeyChannelsDisband, n)
	}
	return message("🧹 Deleted %d team voice channel(s).", n), nil
}
