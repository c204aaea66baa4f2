package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new SnapshotStore.
func New(db *sql.DB) SnapshotStore {
	return &store{db: db}
}

// Set replaces the guild's snapshot.
func (s *store) Set(snap *Snapshot) error {
	if snap.Version == 0 {
		snap.Version = CurrentVersion
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO snapshots (guild_id, version, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, snap.GuildID, snap.Version, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	log.Debug("Stored snapshot", "guild", snap.GuildID, "roll_id", snap.RollID, "teams", len(snap.Teams))
	return nil
}

// Get loads the guild's snapshot. Payloads written by a newer layout are
// rejected with ErrUnsupportedVersion.
func (s *store) Get(guildID int64) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var version int
	var payload string
	err := s.db.QueryRow("SELECT version, payload FROM snapshots WHERE guild_id = ?", guildID).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
