package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/guildlock"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/session"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/mauv0809/squadroll/internal/voice"
)

// mentions renders user ids as Discord mentions.
var mentions = notifier.Labeler(notifier.MentionLabel)

type handlerFunc func(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error)

// New creates a Bot and registers every command handler.
func New(deps Deps) *Bot {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Locks == nil {
		deps.Locks = guildlock.New()
	}
	if deps.VoiceTTL <= 0 {
		deps.VoiceTTL = voice.DefaultTTL
	}
	rnd := teams.NewRand(uint64(deps.Now().UnixNano()))
	if deps.Partitioner == nil {
		deps.Partitioner = teams.NewPartitioner(rnd)
	}
	if deps.Searcher == nil {
		deps.Searcher = teams.NewSearcher(deps.Partitioner, rnd)
	}
	b := &Bot{Deps: deps, validate: newValidator()}
	b.handlers = map[string]command{
		"team":           {run: b.team, mutate: true, guild: true},
		"teamroll":       {run: b.teamroll, mutate: true, guild: true},
		"teamroll_end":   {run: b.teamrollEnd, admin: true, mutate: true, guild: true},
		"teamroll_reset": {run: b.teamrollReset, admin: true, mutate: true, guild: true},
		"teamroll_stats": {run: b.teamrollStats, guild: true},
		"team_last":      {run: b.teamLast, guild: true},
		"go":             {run: b.deploy, mutate: true, guild: true},
		"disbandteams":   {run: b.disband, mutate: true, guild: true},

		"tournament create":   {run: b.tournamentCreate, mutate: true, guild: true},
		"tournament add":      {run: b.tournamentAdd, mutate: true, guild: true},
		"tournament start":    {run: b.tournamentStart, admin: true, mutate: true, guild: true},
		"tournament view":     {run: b.tournamentView, guild: true},
		"tournament report":   {run: b.tournamentReport, admin: true, mutate: true, guild: true},
		"tournament cancel":   {run: b.tournamentCancel, admin: true, mutate: true, guild: true},
		"tournament_use_last": {run: b.tournamentUseLast, mutate: true, guild: true},

		"arena start":   {run: b.arenaStart, admin: true, mutate: true, guild: true},
		"arena round":   {run: b.arenaRound, mutate: true, guild: true},
		"arena status":  {run: b.arenaStatus, guild: true},
		"arena report":  {run: b.arenaReport, admin: true, mutate: true, guild: true},
		"arena advance": {run: b.arenaAdvance, admin: true, mutate: true, guild: true},
		"arena stop":    {run: b.arenaStop, admin: true, mutate: true, guild: true},
		"arena cancel":  {run: b.arenaCancel, admin: true, mutate: true, guild: true},

		"setskill": {run: b.setSkill, mutate: true},
		"setrank":  {run: b.setRank, mutate: true},
		"linklol":  {run: b.linkLoL, mutate: true},
		"ranks":    {run: b.ranks, guild: true},
		"whoami":   {run: b.whoami},
		"help":     {run: b.help},
	}
	return b
}

// Handle answers an interaction. PING is answered with PONG; commands get a
// channel message, ephemeral when the command failed.
func (b *Bot) Handle(ctx context.Context, i *discordgo.Interaction, dryRun bool) *discordgo.InteractionResponse {
	if i.Type == discordgo.InteractionPing {
		return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
	}
	inv, err := Parse(i, b.OwnerID)
	if err != nil {
		log.Warn("Unsupported interaction", "error", err, "type", i.Type)
		return respond(errorData(err))
	}
	inv.DryRun = dryRun
	data, err := b.Dispatch(ctx, inv)
	if err != nil {
		return respond(errorData(err))
	}
	return respond(data)
}

// Dispatch runs the handler of a parsed invocation.
func (b *Bot) Dispatch(ctx context.Context, inv *Invocation) (*discordgo.InteractionResponseData, error) {
	cmd, ok := b.handlers[inv.Name]
	if !ok {
		return nil, fmt.Errorf("%w: /%s", ErrUnknownCmd, inv.Name)
	}
	start := b.Now()
	b.Metrics.IncCommand(inv.Name)
	defer func() {
		b.Metrics.ObserveCommandDuration(b.Now().Sub(start).Seconds())
	}()
	log.Info("Received command", "command", inv.Name, "guild", inv.GuildID, "user", inv.UserID)

	if cmd.guild && inv.GuildID == 0 {
		return nil, ErrGuildOnly
	}
	if cmd.admin && !inv.Admin {
		return nil, ErrForbidden
	}
	if cmd.mutate && inv.GuildID != 0 {
		unlock := b.Locks.Lock(inv.GuildID)
		defer unlock()
	}
	data, err := cmd.run(ctx, inv)
	if err != nil {
		if userFacing(err) {
			log.Info("Command rejected", "command", inv.Name, "reason", err)
		} else {
			log.Error("Command failed", "command", inv.Name, "error", err)
		}
		return nil, err
	}
	return data, nil
}

// Names lists the registered command paths.
func (b *Bot) Names() []string {
	out := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		out = append(out, name)
	}
	return out
}

var userErrors = []error{
	ErrForbidden, ErrGuildOnly, ErrNotInVoice, ErrNoSnapshot, ErrUnknownCmd, ErrInvalidOption,
	ErrNoTournament, ErrNoArena, ErrTeamAdd,
	teams.ErrInvalidTeamCount, teams.ErrNotEnoughPlayers,
	session.ErrNotFound,
	arena.ErrOddPlayers, arena.ErrTooFewPlayers, arena.ErrTooManyPlayers, arena.ErrDuplicatePlayer,
	arena.ErrNotRunning, arena.ErrRankTaken, arena.ErrDuoReported, arena.ErrNoMoreRounds, arena.ErrActiveArena,
	arena.ErrEmptyReport, arena.ErrMissingRank, arena.ErrInvalidRank, arena.ErrUnreadableDuo,
	arena.ErrRankOutOfRange, arena.ErrDuplicateRank, arena.ErrUnknownDuo, arena.ErrDuplicateDuo,
	bracket.ErrTooFewParticipants, bracket.ErrUnknownMatch, bracket.ErrMatchDone, bracket.ErrMatchNotReady,
	bracket.ErrByeSlot, bracket.ErrInvalidWinner, bracket.ErrInvalidScore, bracket.ErrActiveTournament,
	bracket.ErrNotSetup, bracket.ErrNotRunning,
	ratings.ErrInvalidTier, ratings.ErrInvalidDivision, ratings.ErrInvalidRating,
	riot.ErrUnknownRegion, riot.ErrNoAPIKey, riot.ErrNotFound, riot.ErrNoRankedEntry,
	snapshot.ErrNotFound,
}

func userFacing(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func errorData(err error) *discordgo.InteractionResponseData {
	if userFacing(err) {
		return ephemeral("❌ " + err.Error())
	}
	return ephemeral("⚠️ Something went wrong, please try again.")
}

func respond(data *discordgo.InteractionResponseData) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func message(format string, args ...any) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:         fmt.Sprintf(format, args...),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

func ephemeral(content string) *discordgo.InteractionResponseData {
	data := message("%s", content)
	data.Flags = discordgo.MessageFlagsEphemeral
	return data
}

// formatted adapts a notifier response. Anything other than Discord response
// data is printed as text.
func formatted(v any, err error) (*discordgo.InteractionResponseData, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to format response: %w", err)
	}
	switch data := v.(type) {
	case *discordgo.InteractionResponseData:
		return data, nil
	case string:
		return message("%s", data), nil
	}
	return message("%v", v), nil
}

// withNote prepends a line of text to a response.
func withNote(data *discordgo.InteractionResponseData, note string) *discordgo.InteractionResponseData {
	if note == "" {
		return data
	}
	if data.Content == "" {
		data.Content = note
	} else {
		data.Content = note + "\n" + data.Content
	}
	return data
}

// publish hands an event to pubsub. Failures only cost the announcement.
func (b *Bot) publish(inv *Invocation, ev pubsub.Event) {
	if b.PubSub == nil {
		return
	}
	ev.DryRun = inv.DryRun
	if err := b.PubSub.SendMessage(ev.Type, ev); err != nil {
		log.Error("Failed to publish event", "error", err, "type", ev.Type, "guild", ev.GuildID)
	}
}

// players returns the mentioned members, or the members of the caller's voice channel.
func (b *Bot) players(inv *Invocation) ([]int64, error) {
	if text := inv.Options.String("members", ""); text != "" {
		return teams.ParseMentions(text), nil
	}
	ids := b.voiceMembers(inv)
	if len(ids) == 0 {
		return nil, ErrNotInVoice
	}
	return ids, nil
}

func (b *Bot) voiceMembers(inv *Invocation) []int64 {
	if b.Presence == nil {
		return nil
	}
	guild := strconv.FormatInt(inv.GuildID, 10)
	channel := b.Presence.MemberVoiceChannel(guild, strconv.FormatInt(inv.UserID, 10))
	if channel == "" {
		return nil
	}
	var ids []int64
	for _, member := range b.Presence.ChannelMembers(guild, channel) {
		if id, err := strconv.ParseInt(member, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *Bot) bump(key string) {
	if b.Usage != nil {
		b.Usage.Increment(key)
	}
}
