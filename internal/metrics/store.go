package metrics

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// store keeps usage counters in the metrics table. Write failures are logged
// and swallowed so counting never fails a command.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a MetricsStore on db.
func New(db *sql.DB) MetricsStore {
	return &store{db: db}
}

func (s *store) Increment(key string) {
	s.Add(key, 1)
}

// Add upserts key and raises it by n. Non-positive deltas are ignored.
func (s *store) Add(key string, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metrics (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = value + excluded.value
	`, key, n)
	if err != nil {
		log.Error("Failed to bump usage counter", "error", err, "key", key, "delta", n)
		return
	}
	log.Debug("Bumped usage counter", "key", key, "delta", n)
}

// Get returns one counter, zero when it was never bumped.
func (s *store) Get(key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value int
	err := s.db.QueryRow("SELECT value FROM metrics WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get counter %q: %w", key, err)
	}
	return value, nil
}

func (s *store) GetAll() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT key, value FROM metrics")
	if err != nil {
		return nil, fmt.Errorf("failed to list counters: %w", err)
	}
	defer rows.Close()

	counters := make(map[string]int)
	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		counters[key] = value
	}
	return counters, rows.Err()
}
