package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncCommand(name string)
	ObserveCommandDuration(duration float64)
	IncRolls()
	IncSearchExhausted()
	IncArenaReports()
	IncBracketReports()
	IncNotifSent()
	IncNotifFailed()
	IncRiotLookups()
	IncRiotFailures()
	IncVoiceMoves()
	IncVoiceMoveFailures()
	AddChannelsSwept(n int)
	SetStartupTime(duration float64)
}

// MetricsStore keeps persistent usage counters.
type MetricsStore interface {
	Increment(key string)
	Add(key string, n int)
	Get(key string) (int, error)
	GetAll() (map[string]int, error)
}
