package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	_ PubSubClient = (*client)(nil)
	_ PubSubClient = (*localClient)(nil)
)

// New connects to Google Pub/Sub. Push subscriptions deliver the topics
// back to the HTTP server.
func New(projectID string) PubSubClient {
	ctx := context.Background()
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:   pubSubC,
		teardown: teardown,
	}
}

func (c *client) SendMessage(topic EventType, data any) error {
	ctx := context.Background()
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data:       msgpackData,
		Attributes: map[string]string{"event": string(topic)},
	}
	result := c.client.Topic(string(topic)).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Info("SendMessage", "topic", topic, "serverID", serverID)
	return nil
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

func (c *client) Close() error {
	c.teardown()
	return nil
}

// NewLocal returns a client that hands every message to handler on its own
// goroutine, encoded the same way as the remote client. Close waits for
// deliveries in flight.
func NewLocal(handler Handler) PubSubClient {
	return &localClient{handler: handler}
}

func (c *localClient) SendMessage(topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	c.wg.Go(func() {
		if err := c.handler(topic, msgpackData); err != nil {
			log.Error("Local delivery failed", "error", err, "topic", topic)
		}
	})
	log.Debug("SendMessage (local)", "topic", topic, "bytes", len(msgpackData))
	return nil
}

func (c *localClient) ProcessMessage(data []byte, returnValue any) error {
	return Decode(data, returnValue)
}

func (c *localClient) Close() error {
	c.wg.Wait()
	return nil
}

// Decode unmarshals a msgpack payload into returnValue.
func Decode(data []byte, returnValue any) error {
	// Unmarshal the MessagePack data into the provided pointer struct
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}
