package notifier

import (
	"errors"
	"testing"

	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArena(t *testing.T, n int) *arena.Arena {
	t.Helper()
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	a, err := arena.New(1, 1, ids, 0)
	require.NoError(t, err)
	return a
}

func TestMultiFansOut(t *testing.T) {
	primary, mirror := NewMock(), NewMock()
	m := NewMulti(primary, nil, mirror)

	require.NoError(t, m.SendRoster("c1", RosterView{Title: "x"}, false))
	assert.Len(t, primary.SendRosterCalls, 1)
	assert.Len(t, mirror.SendRosterCalls, 1)
	assert.Equal(t, "c1", mirror.SendRosterCalls[0].ChannelID)

	a := testArena(t, 4)
	require.NoError(t, m.SendPodium("c1", a, false))
	assert.Len(t, mirror.SendPodiumCalls, 1)
}

func TestMultiJoinsErrors(t *testing.T) {
	primary, mirror := NewMock(), NewMock()
	mirror.SendErr = errors.New("slack down")
	m := NewMulti(primary, mirror)

	err := m.SendStandings("c1", testArena(t, 4), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, mirror.SendErr)
	assert.Len(t, primary.SendStandingsCalls, 1, "the primary still receives the announcement")
}

func TestMultiFormatsWithPrimary(t *testing.T) {
	primary, mirror := NewMock(), NewMock()
	m := NewMulti(primary, mirror)

	resp, err := m.FormatHelpResponse()
	require.NoError(t, err)
	assert.Equal(t, "help", resp)
	assert.Equal(t, []string{"help"}, primary.FormatCalls)
	assert.Empty(t, mirror.FormatCalls)
}

func TestBuildPodium(t *testing.T) {
	a := testArena(t, 4)
	_, err := a.Report("#1:1 | #2:2")
	require.NoError(t, err)

	p := BuildPodium(a, true)
	require.Len(t, p.Top, 3)
	assert.Equal(t, 8, p.Top[0].Points)
	require.NotNil(t, p.Loser)
	assert.Equal(t, 7, p.Loser.Points)
	assert.Contains(t, LoserJokes, p.Joke)

	p = BuildPodium(a, false)
	assert.Nil(t, p.Loser)
	assert.Empty(t, p.Joke)
}
