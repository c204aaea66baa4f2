package http

import (
	"net/http"

	"github.com/mauv0809/squadroll/internal/http/handlers"
)

// Default /api rate limit per client IP.
const (
	defaultAPILimit = 5
	defaultAPIBurst = 10
)

func NewServer(deps Deps) *Server {
	if deps.APILimit <= 0 {
		deps.APILimit = defaultAPILimit
	}
	if deps.APIBurst <= 0 {
		deps.APIBurst = defaultAPIBurst
	}
	server := &Server{
		Deps:    deps,
		Router:  http.NewServeMux(),
		limiter: newIPLimiter(deps.APILimit, deps.APIBurst),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	api := func(h http.Handler) http.Handler {
		return Chain(h, paramsMiddleware, s.rateLimitMiddleware)
	}
	if s.MetricsHandler != nil {
		s.Router.Handle("GET /metrics", s.MetricsHandler)
	}
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /discord/interactions", Chain(handlers.InteractionsHandler(s.PublicKey, s.Bot), paramsMiddleware))
	s.Router.Handle("POST /pubsub/{event}", Chain(handlers.PubSubHandler(s.Events, s.PubSub), paramsMiddleware))
	s.Router.Handle("POST /voice/sweep", Chain(handlers.SweepHandler(s.Voice), paramsMiddleware))
	s.Router.Handle("GET /api/stats", api(handlers.StatsHandler(s.Usage)))
	s.Router.Handle("GET /api/ratings", api(handlers.RatingsHandler(s.Ratings)))
	s.Router.Handle("GET /api/guilds/{guildID}/snapshot", api(handlers.SnapshotHandler(s.Snapshots)))
	s.Router.Handle("GET /api/guilds/{guildID}/tournament", api(handlers.TournamentHandler(s.Tournaments)))
	s.Router.Handle("GET /api/guilds/{guildID}/arena", api(handlers.ArenaHandler(s.Arenas)))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
