package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/database"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/session"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guild = 100

type fixture struct {
	bot      *Bot
	notif    *notifier.Mock
	pub      *pubsub.MockPubSubClient
	metr     *metrics.Mock
	usage    *metrics.MockStore
	presence *voice.FakeAPI
	ratings  ratings.RatingStore
	snaps    snapshot.SnapshotStore
}

func setup(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	f := &fixture{
		notif:    notifier.NewMock(),
		pub:      pubsub.NewMock(),
		metr:     metrics.NewMock(),
		usage:    metrics.NewMockStore(),
		presence: voice.NewFakeAPI(),
		ratings:  ratings.New(db),
		snaps:    snapshot.New(db),
	}
	now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	deps := Deps{
		Snapshots:   f.snaps,
		Sessions:    session.New(db),
		Tournaments: bracket.NewStore(db),
		Arenas:      arena.NewStore(db),
		Ratings:     f.ratings,
		Resolver:    ratings.NewResolver(f.ratings, nil, f.metr, f.usage),
		Voice:       voice.NewManager(f.presence, voice.NewStore(db), f.metr),
		Presence:    f.presence,
		Notifier:    f.notif,
		PubSub:      f.pub,
		Metrics:     f.metr,
		Usage:       f.usage,
		OwnerID:     1,
		Now:         func() time.Time { return now },
	}
	for _, o := range opts {
		o(&deps)
	}
	f.bot = New(deps)
	return f
}

func opt(name string, value any) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
}

func invoke(name string, admin bool, opts ...*discordgo.ApplicationCommandInteractionDataOption) *Invocation {
	inv := &Invocation{Name: name, GuildID: guild, ChannelID: "500", UserID: 7, Admin: admin, Options: Options{}}
	for _, o := range opts {
		inv.Options[o.Name] = o
	}
	return inv
}

func mentionsOf(ids ...int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("<@%d>", id)
	}
	return strings.Join(parts, " ")
}

func (f *fixture) joinVoice(channelID string, ids ...int64) {
	for _, id := range ids {
		f.presence.Connect(fmt.Sprint(guild), fmt.Sprint(id), channelID)
	}
}

func TestDispatchGuards(t *testing.T) {
	t.Run("admin commands reject members", func(t *testing.T) {
		f := setup(t)
		_, err := f.bot.Dispatch(context.Background(), invoke("arena advance", false))
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 1, f.metr.Commands("arena advance"))
	})

	t.Run("guild commands reject direct messages", func(t *testing.T) {
		f := setup(t)
		inv := invoke("team", false)
		inv.GuildID = 0
		_, err := f.bot.Dispatch(context.Background(), inv)
		assert.ErrorIs(t, err, ErrGuildOnly)
	})

	t.Run("unknown command", func(t *testing.T) {
		f := setup(t)
		_, err := f.bot.Dispatch(context.Background(), invoke("nope", true))
		assert.ErrorIs(t, err, ErrUnknownCmd)
	})

	t.Run("ping is answered with pong", func(t *testing.T) {
		f := setup(t)
		resp := f.bot.Handle(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionPing}, false)
		assert.Equal(t, discordgo.InteractionResponsePong, resp.Type)
	})

	t.Run("failures become ephemeral replies", func(t *testing.T) {
		f := setup(t)
		i := &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: fmt.Sprint(guild),
			Member:  &discordgo.Member{User: &discordgo.User{ID: "7"}},
			Data:    discordgo.ApplicationCommandInteractionData{Name: "team_last"},
		}
		resp := f.bot.Handle(context.Background(), i, false)
		require.NotNil(t, resp.Data)
		assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
		assert.Contains(t, resp.Data.Content, "no teams rolled yet")
	})
}

func TestParse(t *testing.T) {
	i := &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "100",
		ChannelID: "500",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "42"}, Permissions: permManageGuild},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "tournament",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name: "report",
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "match_id", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
					{Name: "winner", Type: discordgo.ApplicationCommandOptionUser, Value: "9"},
				},
			}},
		},
	}
	inv, err := Parse(i, 0)
	require.NoError(t, err)
	assert.Equal(t, "tournament report", inv.Name)
	assert.Equal(t, int64(100), inv.GuildID)
	assert.Equal(t, int64(42), inv.UserID)
	assert.True(t, inv.Admin)
	assert.Equal(t, 3, inv.Options.Int("match_id", 0))
	assert.Equal(t, int64(9), inv.Options.User("winner"))

	i.Member.Permissions = 0
	inv, err = Parse(i, 42)
	require.NoError(t, err)
	assert.True(t, inv.Admin, "the owner is always an admin")

	inv, err = Parse(i, 0)
	require.NoError(t, err)
	assert.False(t, inv.Admin)
}

func TestOptionValidation(t *testing.T) {
	f := setup(t)
	_, err := f.bot.Dispatch(context.Background(), invoke("team", false, opt("team_count", float64(9)), opt("members", mentionsOf(1, 2, 3, 4))))
	require.ErrorIs(t, err, ErrInvalidOption)
	assert.Contains(t, err.Error(), "team_count")

	_, err = f.bot.Dispatch(context.Background(), invoke("tournament create", false, opt("kind", "duo"), opt("name", "Cup")))
	require.ErrorIs(t, err, ErrInvalidOption)
	assert.Contains(t, err.Error(), "kind")
}

func TestTeam(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.ratings.SetRating(1, 1800))
	require.NoError(t, f.ratings.SetRating(2, 1200))

	data, err := f.bot.Dispatch(context.Background(), invoke("team", false, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err)
	assert.Equal(t, "roster", data.Content)

	snap, err := f.snaps.Get(guild)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, snap.Sizes)
	assert.Len(t, snap.Players(), 4)

	view := f.notif.LastRosterResponse
	require.NotNil(t, view)
	assert.ElementsMatch(t, []int64{3, 4}, view.Defaulted)

	events := f.pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, pubsub.EventRosterRolled, events[0].Type)
	assert.Equal(t, snap.RollID.String(), events[0].RollID)
	assert.Equal(t, "", events[0].ChannelID)
	assert.Equal(t, 1, f.metr.Rolls())

	counters, err := f.usage.GetAll()
	require.NoError(t, err)
	assert.Equal(t, 1, counters[metrics.KeyRolls])
}

func TestTeamUsesVoiceChannel(t *testing.T) {
	f := setup(t)
	_, err := f.bot.Dispatch(context.Background(), invoke("team", false))
	assert.ErrorIs(t, err, ErrNotInVoice)

	f.joinVoice("v1", 7, 8, 9, 10)
	_, err = f.bot.Dispatch(context.Background(), invoke("team", false))
	require.NoError(t, err)
	snap, err := f.snaps.Get(guild)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{7, 8, 9, 10}, snapshotIDs(snap))
}

func TestTeamrollFallsBackToSnapshot(t *testing.T) {
	f := setup(t)
	_, err := f.bot.Dispatch(context.Background(), invoke("team", false, opt("members", mentionsOf(1, 2, 3, 4, 5, 6)), opt("sizes", "4/2")))
	require.NoError(t, err)

	data, err := f.bot.Dispatch(context.Background(), invoke("teamroll", false))
	require.NoError(t, err)
	assert.Equal(t, "roster", data.Content)

	snap, err := f.snaps.Get(guild)
	require.NoError(t, err)
	assert.Equal(t, "auto-20260314", snap.Session)
	assert.Equal(t, []int{4, 2}, snap.Sizes, "sizes are carried over from the last roll")
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6}, snapshotIDs(snap))

	search := f.notif.LastRosterResponse.Search
	require.NotNil(t, search)
	assert.True(t, search.Committed)
	assert.Equal(t, 15, search.Possible)
	assert.Positive(t, search.Seen)

	stats, err := f.bot.Dispatch(context.Background(), invoke("teamroll_stats", false))
	require.NoError(t, err)
	assert.Contains(t, stats.Content, "auto-20260314")
	assert.Contains(t, stats.Content, "/15")

	_, err = f.bot.Dispatch(context.Background(), invoke("teamroll_reset", false))
	assert.ErrorIs(t, err, ErrForbidden)
	reset, err := f.bot.Dispatch(context.Background(), invoke("teamroll_reset", true, opt("for_current_snapshot", true)))
	require.NoError(t, err)
	assert.Contains(t, reset.Content, "Forgot 1 composition")

	ended, err := f.bot.Dispatch(context.Background(), invoke("teamroll_end", true, opt("session", "auto-20260314")))
	require.NoError(t, err)
	assert.Contains(t, ended.Content, "ended")
}

func TestTeamLastAndDeploy(t *testing.T) {
	f := setup(t)
	_, err := f.bot.Dispatch(context.Background(), invoke("go", false))
	assert.ErrorIs(t, err, ErrNoSnapshot)

	f.joinVoice("lobby", 1, 2, 3, 4)
	_, err = f.bot.Dispatch(context.Background(), invoke("team", false, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err)

	data, err := f.bot.Dispatch(context.Background(), invoke("team_last", false))
	require.NoError(t, err)
	assert.Equal(t, "📌 Last teams", f.notif.LastRosterResponse.Title)
	assert.Equal(t, "roster", data.Content)

	data, err = f.bot.Dispatch(context.Background(), invoke("go", false))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "Moved 4 player(s) into 2 channel(s)")

	data, err = f.bot.Dispatch(context.Background(), invoke("disbandteams", false))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "Deleted 2")
	disbanded, err := f.usage.Get(metrics.KeyChannelsDisband)
	require.NoError(t, err)
	assert.Equal(t, 2, disbanded)
}

func TestTournamentLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.ratings.SetRating(3, 2000))

	_, err := f.bot.Dispatch(ctx, invoke("tournament add", false, opt("members", mentionsOf(1, 2))))
	assert.ErrorIs(t, err, ErrNoTournament)

	_, err = f.bot.Dispatch(ctx, invoke("tournament create", false, opt("name", "Friday Cup")))
	require.NoError(t, err)
	data, err := f.bot.Dispatch(ctx, invoke("tournament add", false, opt("members", mentionsOf(1, 2, 3))))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "Added 3 player(s)")

	_, err = f.bot.Dispatch(ctx, invoke("tournament start", false))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.bot.Dispatch(ctx, invoke("tournament start", true))
	require.NoError(t, err)

	view := f.notif.LastBracketResponse
	require.NotNil(t, view)
	require.Len(t, view.Participants, 3)
	assert.Equal(t, int64(3), view.Participants[0].Members[0], "the highest rating is seeded first")
	require.Len(t, view.Matches, 3)

	semi := view.Matches[1]
	final := view.Matches[2]
	_, err = f.bot.Dispatch(ctx, invoke("tournament report", true, opt("match_id", float64(semi.ID)), opt("winner", "1"), opt("p1_score", float64(2))))
	require.NoError(t, err)
	data, err = f.bot.Dispatch(ctx, invoke("tournament report", true, opt("match_id", float64(final.ID)), opt("winner", "3")))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "👑 <@3> won **Friday Cup**!")
	assert.Equal(t, 2, f.metr.BracketReports())

	var bracketEvents int
	for _, ev := range f.pub.Events() {
		if ev.Type == pubsub.EventBracketUpdated {
			bracketEvents++
		}
	}
	assert.Equal(t, 3, bracketEvents)

	_, err = f.bot.Dispatch(ctx, invoke("tournament view", false))
	assert.ErrorIs(t, err, ErrNoTournament, "a finished tournament is no longer active")
}

func TestTournamentUseLast(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.bot.Dispatch(ctx, invoke("team", false, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err)

	preview, err := f.bot.Dispatch(ctx, invoke("tournament_use_last", false, opt("kind", "team"), opt("dry_run", true)))
	require.NoError(t, err)
	assert.Contains(t, preview.Content, "2 to add")
	assert.Contains(t, preview.Content, "would be created")
	_, err = f.bot.Dispatch(ctx, invoke("tournament view", false))
	assert.ErrorIs(t, err, ErrNoTournament, "a dry run creates nothing")

	_, err = f.bot.Dispatch(ctx, invoke("tournament_use_last", false, opt("kind", "team"), opt("name", "Duo Cup")))
	require.NoError(t, err)
	_, err = f.bot.Dispatch(ctx, invoke("tournament add", false, opt("members", mentionsOf(5))))
	assert.ErrorIs(t, err, ErrTeamAdd)

	again, err := f.bot.Dispatch(ctx, invoke("tournament_use_last", false, opt("dry_run", true)))
	require.NoError(t, err)
	assert.Contains(t, again.Content, "0 to add")
	assert.Contains(t, again.Content, "already registered")
}

func TestArenaFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.bot.Dispatch(ctx, invoke("arena start", true, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err)
	snap, err := f.snaps.Get(guild)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ModeArenaRound, snap.Mode)
	assert.Equal(t, "1", snap.Params["round"])

	data, err := f.bot.Dispatch(ctx, invoke("arena report", true, opt("placements", "#1:1")))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "Waiting for duo(s) 2")

	data, err = f.bot.Dispatch(ctx, invoke("arena report", true, opt("placements", "#2:2")))
	require.NoError(t, err)
	assert.Equal(t, 2, f.metr.ArenaReports())
	snap, err = f.snaps.Get(guild)
	require.NoError(t, err)
	assert.Equal(t, "2", snap.Params["round"], "the next round becomes the snapshot")

	var posted []pubsub.Event
	for _, ev := range f.pub.Events() {
		if ev.Type == pubsub.EventArenaUpdated && ev.View == pubsub.ArenaRound && ev.ChannelID == "500" {
			posted = append(posted, ev)
		}
	}
	assert.Len(t, posted, 1, "the new round is posted to the channel")

	data, err = f.bot.Dispatch(ctx, invoke("arena advance", true))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "2 duo(s) scored nothing")
	data, err = f.bot.Dispatch(ctx, invoke("arena advance", true))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "podium")

	_, err = f.bot.Dispatch(ctx, invoke("arena status", false))
	assert.ErrorIs(t, err, ErrNoArena)
}

func TestArenaRejectsBadReports(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.bot.Dispatch(ctx, invoke("arena start", true, opt("members", mentionsOf(1, 2, 3))))
	assert.ErrorIs(t, err, arena.ErrOddPlayers)

	_, err = f.bot.Dispatch(ctx, invoke("arena start", true, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err)
	_, err = f.bot.Dispatch(ctx, invoke("arena report", true, opt("placements", "#1:9")))
	assert.ErrorIs(t, err, arena.ErrRankOutOfRange)
	assert.True(t, userFacing(err))

	_, err = f.bot.Dispatch(ctx, invoke("arena cancel", true))
	require.NoError(t, err)
}

func TestRatingCommands(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	data, err := f.bot.Dispatch(ctx, invoke("setskill", false, opt("user", "5"), opt("rating", 1320.0)))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "1320")
	_, err = f.bot.Dispatch(ctx, invoke("setskill", false, opt("user", "5"), opt("rating", 9000.0)))
	assert.ErrorIs(t, err, ErrInvalidOption)

	data, err = f.bot.Dispatch(ctx, invoke("setrank", false, opt("user", "6"), opt("tier", "EMERALD"), opt("division", "iii"), opt("lp", float64(10))))
	require.NoError(t, err)
	want := ratings.RankToRating("EMERALD", "III", 10)
	assert.Contains(t, data.Content, fmt.Sprintf("%.0f", want))

	data, err = f.bot.Dispatch(ctx, invoke("linklol", false, opt("user", "6"), opt("summoner", "Faker"), opt("region", "euw")))
	require.NoError(t, err)
	assert.Contains(t, data.Content, "No Riot API key")
	_, err = f.bot.Dispatch(ctx, invoke("linklol", false, opt("user", "6"), opt("summoner", "Faker"), opt("region", "mars")))
	assert.ErrorIs(t, err, riot.ErrUnknownRegion)

	_, err = f.bot.Dispatch(ctx, invoke("ranks", false, opt("scope", "server"), opt("sort", "rating_asc")))
	require.NoError(t, err)
	view := f.notif.LastRanksResponse
	require.NotNil(t, view)
	assert.Equal(t, "Server", view.Scope)
	assert.Equal(t, ratings.OrderRatingAsc, view.Order)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, int64(5), view.Entries[0].UserID)

	_, err = f.bot.Dispatch(ctx, invoke("ranks", false, opt("scope", "voice")))
	assert.ErrorIs(t, err, ErrNotInVoice)

	inv := invoke("whoami", false)
	inv.UserID = 6
	data, err = f.bot.Dispatch(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, data.Flags)
	assert.Contains(t, data.Content, "Faker (EUW)")
	assert.Contains(t, data.Content, "Emerald III 10 LP")
}

func TestCommandsMatchHandlers(t *testing.T) {
	f := setup(t)
	var registered []string
	for _, cmd := range Commands() {
		subs := 0
		for _, o := range cmd.Options {
			if o.Type == discordgo.ApplicationCommandOptionSubCommand {
				registered = append(registered, cmd.Name+" "+o.Name)
				subs++
			}
		}
		if subs == 0 {
			registered = append(registered, cmd.Name)
		}
	}
	names := f.bot.Names()
	sort.Strings(registered)
	sort.Strings(names)
	assert.Equal(t, names, registered)
}
