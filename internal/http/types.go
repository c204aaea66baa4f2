package http

import (
	"crypto/ed25519"
	"net/http"

	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/http/handlers"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/pubsub"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/voice"
	"golang.org/x/time/rate"
)

// Deps are the collaborators served over HTTP.
type Deps struct {
	Bot            handlers.InteractionHandler
	Events         handlers.EventHandler
	PubSub         pubsub.PubSubClient
	Voice          voice.VoiceManager
	Snapshots      snapshot.SnapshotStore
	Tournaments    bracket.TournamentStore
	Arenas         arena.ArenaStore
	Ratings        ratings.RatingStore
	Usage          metrics.MetricsStore
	MetricsHandler http.Handler
	PublicKey      ed25519.PublicKey
	// APILimit and APIBurst bound /api requests per client IP.
	APILimit rate.Limit
	APIBurst int
}

type Server struct {
	Deps
	Router  *http.ServeMux
	limiter *ipLimiter
}
