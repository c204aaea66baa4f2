package arena

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const arenaColumns = `id, guild_id, state, rounds_total, current_round, participants_json,
	schedule_json, scores_json, progress_json, created_by, created_at, updated_at`

// NewStore creates a new ArenaStore.
func NewStore(db *sql.DB) ArenaStore {
	return &store{db: db}
}

// Create inserts a running arena and sets its ID. It fails with
// ErrActiveArena when the guild already has one running.
func (s *store) Create(a *Arena) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, err := encode(a)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRow("SELECT id FROM arenas WHERE guild_id = ? AND state = ?", a.GuildID, StateRunning).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w (id %d)", ErrActiveArena, existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check running arena: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO arenas (guild_id, state, rounds_total, current_round, participants_json,
			schedule_json, scores_json, progress_json, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.GuildID, a.State, a.RoundsTotal, a.CurrentRound, cols.participants,
		cols.schedule, cols.scores, cols.progress, a.CreatedBy, a.CreatedAt.Unix(), a.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert arena: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	a.ID = id
	log.Info("Arena created", "id", id, "guild", a.GuildID, "players", len(a.Participants), "rounds", a.RoundsTotal)
	return nil
}

// Get loads an arena by id.
func (s *store) Get(id int64) (*Arena, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanArena(s.db.QueryRow("SELECT "+arenaColumns+" FROM arenas WHERE id = ?", id))
}

// GetActive loads the running arena of a guild.
func (s *store) GetActive(guildID int64) (*Arena, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanArena(s.db.QueryRow(
		"SELECT "+arenaColumns+" FROM arenas WHERE guild_id = ? AND state = ? ORDER BY id DESC LIMIT 1",
		guildID, StateRunning,
	))
}

// Save writes the mutable fields of an arena.
func (s *store) Save(a *Arena) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols, err := encode(a)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE arenas SET state = ?, current_round = ?, scores_json = ?, progress_json = ?, updated_at = ?
		WHERE id = ?
	`, a.State, a.CurrentRound, cols.scores, cols.progress, a.UpdatedAt.Unix(), a.ID)
	if err != nil {
		return fmt.Errorf("failed to save arena %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type encoded struct {
	participants, schedule, scores, progress string
}

func encode(a *Arena) (encoded, error) {
	var out encoded
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&out.participants, a.Participants},
		{&out.schedule, a.Schedule},
		{&out.scores, a.Scores},
		{&out.progress, a.Progress},
	} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return out, fmt.Errorf("failed to marshal arena: %w", err)
		}
		*f.dst = string(b)
	}
	return out, nil
}

func (s *store) scanArena(scanner interface{ Scan(...any) error }) (*Arena, error) {
	var a Arena
	var participants, schedule, scores, progress string
	var createdAt, updatedAt int64
	err := scanner.Scan(&a.ID, &a.GuildID, &a.State, &a.RoundsTotal, &a.CurrentRound,
		&participants, &schedule, &scores, &progress, &a.CreatedBy, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan arena: %w", err)
	}
	if err := json.Unmarshal([]byte(participants), &a.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}
	if err := json.Unmarshal([]byte(schedule), &a.Schedule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schedule: %w", err)
	}
	if err := json.Unmarshal([]byte(scores), &a.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal([]byte(progress), &a.Progress); err != nil {
		log.Error("Failed to unmarshal arena progress", "error", err, "arenaID", a.ID)
	}
	if a.Scores == nil {
		a.Scores = map[int64]int{}
	}
	if a.Progress.Ranks == nil {
		a.Progress.Ranks = map[int]int{}
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &a, nil
}
