package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "squadroll_commands_total",
			Help: "The total number of slash commands handled, by command name.",
		}, []string{"command"}),
		CommandDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "squadroll_command_duration_seconds",
			Help:    "The duration of slash command handling.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		Rolls:             counter("squadroll_rolls_total", "The total number of team rolls produced."),
		SearchExhausted:   counter("squadroll_search_exhausted_total", "Session searches that found no unseen composition."),
		ArenaReports:      counter("squadroll_arena_reports_total", "Accepted arena placement reports."),
		BracketReports:    counter("squadroll_bracket_reports_total", "Accepted bracket match results."),
		NotifSent:         counter("squadroll_notifications_sent_total", "The total number of announcements successfully sent."),
		NotifFailed:       counter("squadroll_notifications_failed_total", "The total number of announcements that failed to send."),
		RiotLookups:       counter("squadroll_riot_lookups_total", "Rank lookups issued to the Riot API."),
		RiotFailures:      counter("squadroll_riot_failures_total", "Rank lookups that failed."),
		VoiceMoves:        counter("squadroll_voice_moves_total", "Members moved into team voice channels."),
		VoiceMoveFailures: counter("squadroll_voice_move_failures_total", "Member moves that failed."),
		ChannelsSwept:     counter("squadroll_voice_channels_swept_total", "Expired voice channels deleted by the sweeper."),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "squadroll_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Commands,
		s.CommandDuration,
		s.Rolls,
		s.SearchExhausted,
		s.ArenaReports,
		s.BracketReports,
		s.NotifSent,
		s.NotifFailed,
		s.RiotLookups,
		s.RiotFailures,
		s.VoiceMoves,
		s.VoiceMoveFailures,
		s.ChannelsSwept,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncCommand(name string) {
	s.Commands.WithLabelValues(name).Inc()
}

func (s *Service) ObserveCommandDuration(duration float64) {
	s.CommandDuration.Observe(duration)
}

func (s *Service) IncRolls()             { s.Rolls.Inc() }
func (s *Service) IncSearchExhausted()   { s.SearchExhausted.Inc() }
func (s *Service) IncArenaReports()      { s.ArenaReports.Inc() }
func (s *Service) IncBracketReports()    { s.BracketReports.Inc() }
func (s *Service) IncNotifSent()         { s.NotifSent.Inc() }
func (s *Service) IncNotifFailed()       { s.NotifFailed.Inc() }
func (s *Service) IncRiotLookups()       { s.RiotLookups.Inc() }
func (s *Service) IncRiotFailures()      { s.RiotFailures.Inc() }
func (s *Service) IncVoiceMoves()        { s.VoiceMoves.Inc() }
func (s *Service) IncVoiceMoveFailures() { s.VoiceMoveFailures.Inc() }

func (s *Service) AddChannelsSwept(n int) {
	s.ChannelsSwept.Add(float64(n))
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
