package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func names(id int64) string {
	return map[int64]string{1: "ana", 2: "bo", 3: "cy", 4: "di"}[id]
}

func testArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(1, 1, []int64{1, 2, 3, 4}, 0)
	require.NoError(t, err)
	return a
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics, false, nil)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID, "the configured channel wins over the Discord one")
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metrics, false, names)

	err := n.SendStandings("discord-channel", testArena(t), false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.NotifSent())
	assert.Equal(t, 0, metrics.NotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metrics, false, names)

	err := n.SendPodium("", testArena(t), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.NotifSent())
	assert.Equal(t, 1, metrics.NotifFailed())
}

func TestFormatRoster(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock(), false, names)
	snap := snapshot.NewSnapshot(1, 1, teams.Assignment{
		Teams: []teams.Team{{{ID: 1, Rating: 1200}}, {{ID: 2, Rating: 1000}}},
		Sizes: []int{1, 1},
	}, "random")

	msg := n.formatRoster(notifier.RosterView{Snapshot: snap, Overflow: true})
	blocks := msg.Blocks.BlockSet
	require.Len(t, blocks, 4)

	team := blocks[1].(*slackapi.SectionBlock)
	assert.Equal(t, "Team 1 (1200)\n• ana (1200)", team.Text.Text)
	note := blocks[3].(*slackapi.ContextBlock)
	assert.Contains(t, note.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text, "did not fit")
}

func TestFormatPodiumTrashTalk(t *testing.T) {
	a := testArena(t)
	_, err := a.Report("#1:1 | #2:2")
	require.NoError(t, err)

	msg := NewNotifierWithAPI(nil, "C", metrics.NewMock(), true, names).formatPodium(a)
	require.Len(t, msg.Blocks.BlockSet, 3)

	msg = NewNotifierWithAPI(nil, "C", metrics.NewMock(), false, names).formatPodium(a)
	assert.Len(t, msg.Blocks.BlockSet, 2)
}

func TestFormatRanksResponse(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C", metrics.NewMock(), false, nil)
	resp, err := n.FormatRanksResponse(notifier.RanksView{
		Scope:   "server",
		Order:   ratings.OrderRatingAsc,
		Entries: []ratings.Entry{{UserID: 7, Rating: 900, Rank: &ratings.Rank{Tier: "IRON", Division: "I", LP: 10}}},
		Total:   1,
	})
	require.NoError(t, err)
	msg := resp.(slackapi.Message)
	list := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Equal(t, "1. @7 900 (Iron I 10 LP)", list.Text.Text)
}
