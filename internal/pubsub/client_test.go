package pubsub_test

import (
	"sync"
	"testing"

	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalClientDeliversEncodedEvents(t *testing.T) {
	var (
		mu       sync.Mutex
		received []pubsub.Event
		topics   []pubsub.EventType
	)
	var c pubsub.PubSubClient
	c = pubsub.NewLocal(func(topic pubsub.EventType, data []byte) error {
		var ev pubsub.Event
		if err := c.ProcessMessage(data, &ev); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		received = append(received, ev)
		topics = append(topics, topic)
		return nil
	})

	ev := pubsub.NewEvent(pubsub.EventArenaUpdated, 42, "100")
	ev.ArenaID = 7
	ev.View = pubsub.ArenaStandings
	require.NoError(t, c.SendMessage(ev.Type, ev))
	require.NoError(t, c.Close())

	require.Len(t, received, 1)
	assert.Equal(t, []pubsub.EventType{pubsub.EventArenaUpdated}, topics)
	got := received[0]
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, int64(42), got.GuildID)
	assert.Equal(t, "100", got.ChannelID)
	assert.Equal(t, int64(7), got.ArenaID)
	assert.Equal(t, pubsub.ArenaStandings, got.View)
	assert.True(t, ev.CreatedAt.Equal(got.CreatedAt))
}

func TestNewEventIDsAreUnique(t *testing.T) {
	a := pubsub.NewEvent(pubsub.EventRosterRolled, 1, "")
	b := pubsub.NewEvent(pubsub.EventRosterRolled, 1, "")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestProcessMessageRejectsGarbage(t *testing.T) {
	c := pubsub.NewMock()
	var ev pubsub.Event
	assert.Error(t, c.ProcessMessage([]byte{0xc1}, &ev))
	assert.Len(t, c.ProcessMessageCalls, 1)
}
