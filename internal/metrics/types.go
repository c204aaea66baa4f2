package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys of the persistent usage counters kept in the metrics table.
const (
	KeyRolls            = "rolls"
	KeySessionRolls     = "session_rolls"
	KeyTournaments      = "tournaments_started"
	KeyArenas           = "arenas_started"
	KeyArenaRounds      = "arena_rounds_posted"
	KeyRiotImports      = "riot_imports"
	KeyNotificationsOut = "notifications_sent"
	KeyEventsHandled    = "events_handled"
	KeyChannelsDisband  = "voice_channels_disbanded"
)

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Commands           *prometheus.CounterVec
	CommandDuration    prometheus.Histogram
	Rolls              prometheus.Counter
	SearchExhausted    prometheus.Counter
	ArenaReports       prometheus.Counter
	BracketReports     prometheus.Counter
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	RiotLookups        prometheus.Counter
	RiotFailures       prometheus.Counter
	VoiceMoves         prometheus.Counter
	VoiceMoveFailures  prometheus.Counter
	ChannelsSwept      prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
