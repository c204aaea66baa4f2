package processor

import (
	"errors"

	"github.com/mauv0809/squadroll/internal/metrics"
)

// ErrUnknownEvent is returned for event types the processor does not handle.
var ErrUnknownEvent = errors.New("unknown event type")

// Processor turns published events into announcements.
type Processor struct {
	stores   Stores
	notifier Notifier
	metrics  metrics.Metrics
	usage    metrics.MetricsStore
}
