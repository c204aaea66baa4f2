package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/processor"
	"github.com/mauv0809/squadroll/internal/pubsub"
)

// EventHandler handles decoded events.
type EventHandler interface {
	HandleEvent(ev pubsub.Event) error
}

// pushEnvelope is the body of a Pub/Sub push delivery.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		MessageID  string            `json:"messageId"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
}

// PubSubHandler consumes push deliveries for /pubsub/{event}. Non-2xx answers
// make Pub/Sub redeliver, so only unreadable messages are rejected outright.
func PubSubHandler(events EventHandler, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := pubsub.EventType(r.PathValue("event"))
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received pubsub message", "event", topic, "body", string(bodyBytes))

		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var ev pubsub.Event
		if err := pubsubClient.ProcessMessage(rawData, &ev); err != nil {
			log.Error("Failed to decode event", "error", err, "event", topic)
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		if ev.Type == "" {
			ev.Type = topic
		}
		if ev.Type != topic {
			log.Warn("Event delivered to another topic", "path", topic, "type", ev.Type)
		}
		ev.DryRun = ev.DryRun || IsDryRunFromContext(r)

		err = events.HandleEvent(ev)
		switch {
		case errors.Is(err, processor.ErrUnknownEvent):
			http.Error(w, "Unknown event", http.StatusBadRequest)
			return
		case err != nil:
			log.Error("Failed to handle event", "error", err, "event", ev.Type, "id", ev.ID)
			http.Error(w, "Failed to handle event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
