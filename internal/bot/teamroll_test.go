package bot

import (
	"context"
	"errors"
	"testing"

	discordnotifier "github.com/mauv0809/squadroll/internal/notifier/discord"
	"github.com/mauv0809/squadroll/internal/session"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSessions(store session.SessionStore) func(*Deps) {
	return func(d *Deps) { d.Sessions = store }
}

func TestTeamrollWithoutCommit(t *testing.T) {
	sessions := session.NewMock()
	f := setup(t, withSessions(sessions))

	_, err := f.bot.Dispatch(context.Background(), invoke("teamroll", false,
		opt("members", mentionsOf(1, 2, 3, 4)),
		opt("commit", false),
	))
	require.NoError(t, err)

	assert.Empty(t, sessions.CommitCalls)
	search := f.notif.LastRosterResponse.Search
	require.NotNil(t, search)
	assert.Equal(t, "auto-20260314", search.Session)
	assert.False(t, search.Committed)
	assert.False(t, search.Exhausted)

	sess, err := sessions.Get(guild, "auto-20260314")
	require.NoError(t, err)
	counts, err := sessions.PairCounts(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, counts, "a roll that is not committed leaves no history")
}

func TestTeamrollCommits(t *testing.T) {
	sessions := session.NewMock()
	f := setup(t, withSessions(sessions))

	_, err := f.bot.Dispatch(context.Background(), invoke("teamroll", false, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err)

	require.Len(t, sessions.CommitCalls, 1)
	call := sessions.CommitCalls[0]
	assert.Equal(t, session.Scope{PlayerFP: "1,2,3,4", SizeFP: "2,2"}, call.Scope)
	assert.Len(t, call.Comp, 2)
	assert.True(t, f.notif.LastRosterResponse.Search.Committed)
}

func TestTeamrollReportsExhaustedSearch(t *testing.T) {
	sessions := session.NewMock()
	f := setup(t, withSessions(sessions))

	sess, err := sessions.GetOrCreate(guild, "auto-20260314")
	require.NoError(t, err)
	ids := []int64{1, 2, 3, 4}
	scope := session.Scope{PlayerFP: teams.PlayerFingerprint(ids), SizeFP: teams.SizeFingerprint([]int{2, 2})}
	for _, comp := range [][][]int64{
		{{1, 2}, {3, 4}},
		{{1, 3}, {2, 4}},
		{{1, 4}, {2, 3}},
	} {
		added, err := sessions.AddSignature(sess.ID, scope, teams.Signature(comp))
		require.NoError(t, err)
		require.True(t, added)
	}

	_, err = f.bot.Dispatch(context.Background(), invoke("teamroll", false, opt("members", mentionsOf(ids...))))
	require.NoError(t, err)

	search := f.notif.LastRosterResponse.Search
	require.NotNil(t, search)
	assert.True(t, search.Exhausted)
	assert.False(t, search.Committed, "a seen composition is not stored twice")
	assert.Positive(t, search.Tried)
	assert.Equal(t, 1, f.metr.SearchExhausted())
	require.Len(t, sessions.CommitCalls, 1)
}

func TestTeamrollExhaustedReply(t *testing.T) {
	sessions := session.NewMock()
	f := setup(t, withSessions(sessions), func(d *Deps) {
		d.Notifier = discordnotifier.NewNotifier(nil, d.Metrics, d.Usage, false)
	})

	sess, err := sessions.GetOrCreate(guild, "friday")
	require.NoError(t, err)
	scope := session.Scope{PlayerFP: "1,2,3,4", SizeFP: "2,2"}
	for _, sig := range []string{
		teams.Signature([][]int64{{1, 2}, {3, 4}}),
		teams.Signature([][]int64{{1, 3}, {2, 4}}),
		teams.Signature([][]int64{{1, 4}, {2, 3}}),
	} {
		_, err := sessions.AddSignature(sess.ID, scope, sig)
		require.NoError(t, err)
	}

	data, err := f.bot.Dispatch(context.Background(), invoke("teamroll", false,
		opt("members", mentionsOf(1, 2, 3, 4)),
		opt("session", "friday"),
	))
	require.NoError(t, err)
	require.Len(t, data.Embeds, 1)
	assert.Contains(t, data.Embeds[0].Description, "Session friday")
	assert.Contains(t, data.Embeds[0].Description, "every composition already seen")
}

func TestRollReportsIgnoredSizes(t *testing.T) {
	t.Run("team", func(t *testing.T) {
		f := setup(t)
		_, err := f.bot.Dispatch(context.Background(), invoke("team", false,
			opt("members", mentionsOf(1, 2, 3, 4, 5, 6)),
			opt("sizes", "3/4"),
		))
		require.NoError(t, err)

		assert.Equal(t, "3/4", f.notif.LastRosterResponse.IgnoredSizes)
		snap, err := f.snaps.Get(guild)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3}, snap.Sizes)
	})

	t.Run("teamroll", func(t *testing.T) {
		f := setup(t)
		_, err := f.bot.Dispatch(context.Background(), invoke("teamroll", false,
			opt("members", mentionsOf(1, 2, 3, 4)),
			opt("sizes", "1/1"),
		))
		require.NoError(t, err)
		assert.Equal(t, "1/1", f.notif.LastRosterResponse.IgnoredSizes)
	})

	t.Run("valid sizes are used", func(t *testing.T) {
		f := setup(t)
		_, err := f.bot.Dispatch(context.Background(), invoke("team", false,
			opt("members", mentionsOf(1, 2, 3, 4, 5, 6)),
			opt("sizes", "4/2"),
		))
		require.NoError(t, err)
		assert.Empty(t, f.notif.LastRosterResponse.IgnoredSizes)
	})
}

func TestArenaStartCancelsWhenSnapshotFails(t *testing.T) {
	snaps := snapshot.NewMock()
	snaps.SetFunc = func(*snapshot.Snapshot) error { return errors.New("disk full") }
	f := setup(t, func(d *Deps) { d.Snapshots = snaps })
	ctx := context.Background()

	_, err := f.bot.Dispatch(ctx, invoke("arena start", true, opt("members", mentionsOf(1, 2, 3, 4))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = f.bot.Dispatch(ctx, invoke("arena status", false))
	assert.ErrorIs(t, err, ErrNoArena, "the failed arena is not left running")

	snaps.SetFunc = nil
	_, err = f.bot.Dispatch(ctx, invoke("arena start", true, opt("members", mentionsOf(1, 2, 3, 4))))
	require.NoError(t, err, "a new arena can start")

	snap, err := snaps.Get(guild)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ModeArenaRound, snap.Mode)
}
