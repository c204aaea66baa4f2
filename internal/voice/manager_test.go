package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/squadroll/internal/database"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (ChannelStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return NewStore(db), teardown
}

func newTestManager(t *testing.T, now time.Time) (*Manager, *FakeAPI, ChannelStore, *metrics.Mock, func()) {
	t.Helper()
	store, teardown := setupTestDB(t)
	api := NewFakeAPI()
	m := metrics.NewMock()
	mgr := NewManager(api, store, m)
	mgr.now = func() time.Time { return now }
	return mgr, api, store, m, teardown
}

func TestDeployCreatesAndMoves(t *testing.T) {
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	mgr, api, store, m, teardown := newTestManager(t, now)
	defer teardown()

	api.AddChannel("1", "lobby", "Lobby")
	api.Connect("1", "10", "lobby")
	api.Connect("1", "11", "lobby")
	api.Connect("1", "20", "lobby")

	res, err := mgr.Deploy(context.Background(), DeployRequest{
		GuildID:  1,
		Teams:    [][]int64{{10, 11}, {20, 21}},
		TTL:      30 * time.Minute,
		ParentID: "cat",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, res.Reused)
	assert.Equal(t, 3, res.Moved)
	assert.Equal(t, 1, res.Skipped, "member 21 is not connected")
	assert.Equal(t, 3, m.VoiceMoves())

	require.Len(t, api.Created, 2)
	assert.Equal(t, "Team 1", api.Created[0].Name)
	assert.Equal(t, "cat", api.Created[0].ParentID)
	assert.Equal(t, 2, api.Created[0].UserLimit)
	assert.Equal(t, res.ChannelIDs[0], api.MemberVoiceChannel("1", "11"))
	assert.Equal(t, res.ChannelIDs[1], api.MemberVoiceChannel("1", "20"))

	tracked, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, tracked, 2)
	assert.Equal(t, now.Add(30*time.Minute), tracked[0].ExpiresAt)
}

func TestDeployReusesAndResetsTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	mgr, api, store, _, teardown := newTestManager(t, now)
	defer teardown()

	api.AddChannel("1", "mine", "Team 1")
	api.AddChannel("1", "user-made", "Team 2")
	require.NoError(t, store.Track(Channel{ChannelID: "mine", GuildID: 1, Name: "Team 1", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Minute)}))

	res, err := mgr.Deploy(context.Background(), DeployRequest{GuildID: 1, Teams: [][]int64{{1}, {2}, {3}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"mine", "user-made", res.ChannelIDs[2]}, res.ChannelIDs)
	assert.Equal(t, 2, res.Reused)
	assert.Equal(t, 1, res.Created)

	tracked, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, tracked, 2, "channels the bot did not create stay untracked")
	assert.Equal(t, "mine", tracked[0].ChannelID)
	assert.Equal(t, now.Add(DefaultTTL), tracked[0].ExpiresAt)
}

func TestDeployCountsFailedMoves(t *testing.T) {
	mgr, api, _, m, teardown := newTestManager(t, time.Now())
	defer teardown()

	api.Connect("1", "10", "lobby")
	api.MoveErr = errors.New("missing permission")

	res, err := mgr.Deploy(context.Background(), DeployRequest{GuildID: 1, Teams: [][]int64{{10}, {11}}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Moved)
	assert.Equal(t, 1, m.VoiceMoveFailures())
}

func TestDisband(t *testing.T) {
	mgr, api, store, _, teardown := newTestManager(t, time.Now())
	defer teardown()

	_, err := mgr.Deploy(context.Background(), DeployRequest{GuildID: 1, Teams: [][]int64{{1}, {2}}})
	require.NoError(t, err)
	require.NoError(t, store.Track(Channel{ChannelID: "vanished", GuildID: 1, Name: "Team 9", CreatedAt: time.Now(), ExpiresAt: time.Now()}))

	n, err := mgr.Disband(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "channels deleted by hand are forgotten too")
	assert.Len(t, api.Deleted, 2)

	tracked, err := store.List(1)
	require.NoError(t, err)
	assert.Empty(t, tracked)
}

func TestSweepDeletesOnlyExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	mgr, api, store, m, teardown := newTestManager(t, now)
	defer teardown()

	api.AddChannel("1", "old", "Team 1")
	api.AddChannel("2", "fresh", "Team 1")
	require.NoError(t, store.Track(Channel{ChannelID: "old", GuildID: 1, Name: "Team 1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.Track(Channel{ChannelID: "fresh", GuildID: 2, Name: "Team 1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	n, err := mgr.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"old"}, api.Deleted)
	assert.Equal(t, 1, m.ChannelsSwept())

	remaining, err := store.Expired(now.Add(2 * time.Hour))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].ChannelID)
}

func TestSweepKeepsChannelsThatFailToDelete(t *testing.T) {
	now := time.Now()
	mgr, api, store, _, teardown := newTestManager(t, now)
	defer teardown()

	require.NoError(t, store.Track(Channel{ChannelID: "stuck", GuildID: 1, Name: "Team 1", CreatedAt: now, ExpiresAt: now.Add(-time.Second)}))
	api.DeleteErr = errors.New("forbidden")

	n, err := mgr.Sweep(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)

	expired, err := store.Expired(now)
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

func TestChannelExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, Channel{ExpiresAt: now}.Expired(now))
	assert.False(t, Channel{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.Equal(t, "Team 3", TeamChannelName(2))
}
