package session

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/teams"
)

// New creates a new SessionStore.
func New(db *sql.DB) SessionStore {
	return &store{
		db: db,
	}
}

// GetOrCreate returns the session for (guild, name), creating it on first use.
func (s *store) GetOrCreate(guildID int64, name string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO team_sessions (guild_id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(guild_id, name) DO NOTHING
	`, guildID, name, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s.get(guildID, name)
}

// Get returns an existing session or ErrNotFound.
func (s *store) Get(guildID int64, name string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(guildID, name)
}

func (s *store) get(guildID int64, name string) (*Session, error) {
	var sess Session
	var createdAt int64
	err := s.db.QueryRow(
		"SELECT id, guild_id, name, created_at FROM team_sessions WHERE guild_id = ? AND name = ?",
		guildID, name,
	).Scan(&sess.ID, &sess.GuildID, &sess.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sess, nil
}

// End deletes a session with its pair counts and signatures. It reports
// whether a session existed.
func (s *store) End(guildID int64, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM team_sessions WHERE guild_id = ? AND name = ?", guildID, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	for _, q := range []string{
		"DELETE FROM session_pairs WHERE session_id = ?",
		"DELETE FROM team_signatures WHERE session_id = ?",
		"DELETE FROM team_sessions WHERE id = ?",
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return false, fmt.Errorf("failed to end session: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Info("Session ended", "guild", guildID, "session", name)
	return true, nil
}

// PairCounts loads how often each pair of players shared a team in the session.
func (s *store) PairCounts(sessionID int64) (map[teams.Pair]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT player_a, player_b, count FROM session_pairs WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pair counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[teams.Pair]int)
	for rows.Next() {
		var a, b int64
		var n int
		if err := rows.Scan(&a, &b, &n); err != nil {
			return nil, fmt.Errorf("failed to scan pair count: %w", err)
		}
		counts[teams.NewPair(a, b)] = n
	}
	return counts, rows.Err()
}

// BumpPairCounts increments the count of every teammate pair of comp.
func (s *store) BumpPairCounts(sessionID int64, comp [][]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpPairs(tx, sessionID, comp); err != nil {
		return err
	}
	return tx.Commit()
}

func bumpPairs(tx *sql.Tx, sessionID int64, comp [][]int64) error {
	stmt, err := tx.Prepare(`
		INSERT INTO session_pairs (session_id, player_a, player_b, count) VALUES (?, ?, ?, 1)
		ON CONFLICT(session_id, player_a, player_b) DO UPDATE SET count = count + 1
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pair statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range teams.TeammatePairs(comp) {
		if _, err := stmt.Exec(sessionID, p.A, p.B); err != nil {
			return fmt.Errorf("failed to bump pair %d/%d: %w", p.A, p.B, err)
		}
	}
	return nil
}

// Signatures returns the signatures already produced for the scope.
func (s *store) Signatures(sessionID int64, scope Scope) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT signature FROM team_signatures WHERE session_id = ? AND player_fp = ? AND size_fp = ?",
		sessionID, scope.PlayerFP, scope.SizeFP,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		out[sig] = struct{}{}
	}
	return out, rows.Err()
}

// AddSignature records a signature. It reports false when it was already known.
func (s *store) AddSignature(sessionID int64, scope Scope, signature string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT OR IGNORE INTO team_signatures (session_id, player_fp, size_fp, signature, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, scope.PlayerFP, scope.SizeFP, signature, time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to add signature: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Commit bumps the pair counts of comp and records its signature in one
// transaction. It reports whether the signature was new.
func (s *store) Commit(sessionID int64, scope Scope, comp [][]int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpPairs(tx, sessionID, comp); err != nil {
		return false, err
	}
	res, err := tx.Exec(`
		INSERT OR IGNORE INTO team_signatures (session_id, player_fp, size_fp, signature, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, scope.PlayerFP, scope.SizeFP, teams.Signature(comp), time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to add signature: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return n > 0, nil
}

// ClearSignatures forgets the signatures of a scope, or of the whole session
// when scope is nil. Pair counts are kept.
func (s *store) ClearSignatures(sessionID int64, scope *Scope) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if scope == nil {
		res, err = s.db.Exec("DELETE FROM team_signatures WHERE session_id = ?", sessionID)
	} else {
		res, err = s.db.Exec(
			"DELETE FROM team_signatures WHERE session_id = ? AND player_fp = ? AND size_fp = ?",
			sessionID, scope.PlayerFP, scope.SizeFP,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear signatures: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Coverage counts the pairs among ids that already played together in the
// session, out of every possible pair.
func (s *store) Coverage(sessionID int64, ids []int64) (int, int, error) {
	unique := uniqueIDs(ids)
	n := len(unique)
	possible := n * (n - 1) / 2
	if n < 2 {
		return 0, possible, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", n), ",")
	args := make([]any, 0, 2*n+1)
	args = append(args, sessionID)
	for _, id := range unique {
		args = append(args, id)
	}
	for _, id := range unique {
		args = append(args, id)
	}
	var seen int
	err := s.db.QueryRow(fmt.Sprintf(`
		SELECT COUNT(*) FROM session_pairs
		WHERE session_id = ? AND count > 0
		AND player_a IN (%s) AND player_b IN (%s)
	`, placeholders, placeholders), args...).Scan(&seen)
	if err != nil {
		return 0, possible, fmt.Errorf("failed to compute coverage: %w", err)
	}
	return seen, possible, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
