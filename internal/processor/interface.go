package processor

import (
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/notifier"
	"github.com/mauv0809/squadroll/internal/snapshot"
)

// Stores defines the database operations required by the processor.
type Stores struct {
	Snapshots   snapshot.SnapshotStore
	Tournaments bracket.TournamentStore
	Arenas      arena.ArenaStore
}

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
