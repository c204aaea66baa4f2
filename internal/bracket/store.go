package bracket

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

const tournamentColumns = `id, guild_id, name, kind, state, best_of, created_by, created_at,
	started_at, finished_at, winner_json`

// NewStore creates a new TournamentStore.
func NewStore(db *sql.DB) TournamentStore {
	return &store{db: db}
}

// CreateTournament inserts a tournament in setup and sets its ID.
func (s *store) CreateTournament(t *Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if active, err := getActive(tx, t.GuildID); err == nil {
		return fmt.Errorf("%w: %q", ErrActiveTournament, active.Name)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if t.Kind == "" {
		t.Kind = KindSolo
	}
	if t.BestOf < 1 {
		t.BestOf = 1
	}
	t.State = StateSetup
	t.CreatedAt = time.Now().UTC()
	res, err := tx.Exec(`
		INSERT INTO tournaments (guild_id, name, kind, state, best_of, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.GuildID, t.Name, t.Kind, t.State, t.BestOf, t.CreatedBy, t.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.ID = id
	log.Info("Tournament created", "id", id, "guild", t.GuildID, "name", t.Name, "kind", t.Kind)
	return nil
}

// GetTournament loads a tournament by id.
func (s *store) GetTournament(id int64) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTournament(s.db, id)
}

// GetActiveTournament loads the tournament in setup or running for a guild.
func (s *store) GetActiveTournament(guildID int64) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getActive(s.db, guildID)
}

func getTournament(q querier, id int64) (*Tournament, error) {
	return scanTournament(q.QueryRow("SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id))
}

func getActive(q querier, guildID int64) (*Tournament, error) {
	return scanTournament(q.QueryRow(
		"SELECT "+tournamentColumns+" FROM tournaments WHERE guild_id = ? AND state IN (?, ?) ORDER BY id DESC LIMIT 1",
		guildID, StateSetup, StateRunning,
	))
}

// AddParticipants registers competitors in order, continuing the seed
// numbering. Competitors already registered are skipped. It returns how many
// were added.
func (s *store) AddParticipants(tournamentID int64, competitors []Competitor) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := getTournament(tx, tournamentID)
	if err != nil {
		return 0, err
	}
	if t.State != StateSetup {
		return 0, ErrNotSetup
	}

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = ?", tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO tournament_participants (tournament_id, member_key, members_json, seed, rating)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare participant statement: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, c := range competitors {
		if len(c.Members) == 0 {
			continue
		}
		members, err := json.Marshal(c.Members)
		if err != nil {
			return 0, err
		}
		res, err := stmt.Exec(tournamentID, c.Key(), string(members), count+added+1, c.Rating)
		if err != nil {
			return 0, fmt.Errorf("failed to add participant: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

// ListParticipants returns the participants in seed order.
func (s *store) ListParticipants(tournamentID int64) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listParticipants(s.db, tournamentID)
}

func listParticipants(q querier, tournamentID int64) ([]Participant, error) {
	rows, err := q.Query(`
		SELECT id, members_json, seed, rating FROM tournament_participants
		WHERE tournament_id = ? ORDER BY seed ASC
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		var members string
		if err := rows.Scan(&p.ID, &members, &p.Seed, &p.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &p.Members); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Start builds the bracket from the participants in seed order and moves the
// tournament to running, all in one transaction.
func (s *store) Start(tournamentID int64) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := getTournament(tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.State != StateSetup {
		return nil, ErrNotSetup
	}
	participants, err := listParticipants(tx, tournamentID)
	if err != nil {
		return nil, err
	}
	seeded := make([]Competitor, len(participants))
	for i, p := range participants {
		seeded[i] = p.Competitor
	}
	matches, err := Build(seeded, t.BestOf)
	if err != nil {
		return nil, err
	}

	for i := range matches {
		m := &matches[i]
		s1, s2, err := encodeSlots(m)
		if err != nil {
			return nil, err
		}
		res, err := tx.Exec(`
			INSERT INTO tournament_matches (tournament_id, round, pos_in_round, slot1_json, slot2_json,
				winner_slot, best_of, status, next_slot)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tournamentID, m.Round, m.Pos, s1, s2, m.Winner, m.BestOf, m.Status, nullSlot(m.NextSlot))
		if err != nil {
			return nil, fmt.Errorf("failed to insert match: %w", err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return nil, err
		}
	}
	for i := range matches {
		m := &matches[i]
		if m.Next < 0 {
			continue
		}
		m.NextID = matches[m.Next].ID
		if _, err := tx.Exec("UPDATE tournament_matches SET next_match_id = ? WHERE id = ?", m.NextID, m.ID); err != nil {
			return nil, fmt.Errorf("failed to link match %d: %w", m.ID, err)
		}
	}

	if _, err := tx.Exec("UPDATE tournaments SET state = ?, started_at = ? WHERE id = ?",
		StateRunning, time.Now().Unix(), tournamentID); err != nil {
		return nil, fmt.Errorf("failed to start tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Info("Tournament started", "id", tournamentID, "participants", len(seeded), "matches", len(matches), "byes", Byes(matches))
	return matches, nil
}

// ListMatches returns the bracket round by round.
func (s *store) ListMatches(tournamentID int64) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMatches(s.db, tournamentID)
}

func listMatches(q querier, tournamentID int64) ([]Match, error) {
	rows, err := q.Query(`
		SELECT id, round, pos_in_round, slot1_json, slot2_json, score1, score2, winner_slot,
			best_of, status, next_match_id, next_slot
		FROM tournament_matches WHERE tournament_id = ?
		ORDER BY round ASC, pos_in_round ASC
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var s1, s2 sql.NullString
		var nextID, nextSlot sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Round, &m.Pos, &s1, &s2, &m.Score1, &m.Score2, &m.Winner,
			&m.BestOf, &m.Status, &nextID, &nextSlot); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if m.Slot1, err = decodeSlot(s1); err != nil {
			return nil, err
		}
		if m.Slot2, err = decodeSlot(s2); err != nil {
			return nil, err
		}
		m.NextID = nextID.Int64
		m.NextSlot = int(nextSlot.Int64)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	index := make(map[int64]int, len(out))
	for i, m := range out {
		index[m.ID] = i
	}
	for i := range out {
		out[i].Next = -1
		if idx, ok := index[out[i].NextID]; ok && out[i].NextID != 0 {
			out[i].Next = idx
		}
	}
	return out, nil
}

// ReportMatch records the winner of a match, moves them into the next match
// and finishes the tournament when the final is reported. The match, its
// successor and the tournament are written in one transaction.
func (s *store) ReportMatch(tournamentID, matchID, winnerUserID int64, score1, score2 int) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, err := getTournament(tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.State != StateRunning {
		return nil, ErrNotRunning
	}
	matches, err := listMatches(tx, tournamentID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range matches {
		if matches[i].ID == matchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownMatch
	}
	if matches[idx].Status == MatchOpen && matches[idx].SlotOf(winnerUserID) == 0 {
		return nil, fmt.Errorf("%w: user %d is not playing match %d", ErrInvalidWinner, winnerUserID, matchID)
	}

	next, err := Report(matches, idx, matches[idx].SlotOf(winnerUserID), score1, score2)
	if err != nil {
		return nil, err
	}
	m := &matches[idx]
	if _, err := tx.Exec(`
		UPDATE tournament_matches SET score1 = ?, score2 = ?, winner_slot = ?, status = ? WHERE id = ?
	`, m.Score1, m.Score2, m.Winner, m.Status, m.ID); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	out := &Outcome{Match: m}
	if next >= 0 {
		n := &matches[next]
		s1, s2, err := encodeSlots(n)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`
			UPDATE tournament_matches SET slot1_json = ?, slot2_json = ?, status = ? WHERE id = ?
		`, s1, s2, n.Status, n.ID); err != nil {
			return nil, fmt.Errorf("failed to update next match: %w", err)
		}
		out.Next = n
	} else {
		out.Champion = m.WinnerCompetitor()
		winner, err := json.Marshal(out.Champion)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec("UPDATE tournaments SET state = ?, finished_at = ?, winner_json = ? WHERE id = ?",
			StateFinished, time.Now().Unix(), string(winner), tournamentID); err != nil {
			return nil, fmt.Errorf("failed to finish tournament: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Info("Match reported", "tournament", tournamentID, "match", matchID, "winner_slot", m.Winner, "final", next < 0)
	return out, nil
}

// Cancel abandons a tournament in setup or running.
func (s *store) Cancel(tournamentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE tournaments SET state = ? WHERE id = ? AND state IN (?, ?)",
		StateCancelled, tournamentID, StateSetup, StateRunning)
	if err != nil {
		return fmt.Errorf("failed to cancel tournament: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTournament(row *sql.Row) (*Tournament, error) {
	var t Tournament
	var createdAt int64
	var startedAt, finishedAt sql.NullInt64
	var winner sql.NullString
	err := row.Scan(&t.ID, &t.GuildID, &t.Name, &t.Kind, &t.State, &t.BestOf, &t.CreatedBy, &createdAt,
		&startedAt, &finishedAt, &winner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	if startedAt.Valid {
		ts := time.Unix(startedAt.Int64, 0).UTC()
		t.StartedAt = &ts
	}
	if finishedAt.Valid {
		ts := time.Unix(finishedAt.Int64, 0).UTC()
		t.FinishedAt = &ts
	}
	if winner.Valid && winner.String != "" {
		if err := json.Unmarshal([]byte(winner.String), &t.Winner); err != nil {
			log.Error("Failed to unmarshal winner_json", "error", err, "tournamentID", t.ID)
		}
	}
	return &t, nil
}

func encodeSlots(m *Match) (sql.NullString, sql.NullString, error) {
	s1, err := encodeSlot(m.Slot1)
	if err != nil {
		return s1, s1, err
	}
	s2, err := encodeSlot(m.Slot2)
	return s1, s2, err
}

func encodeSlot(c *Competitor) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal competitor: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeSlot(v sql.NullString) (*Competitor, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var c Competitor
	if err := json.Unmarshal([]byte(v.String), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal competitor: %w", err)
	}
	return &c, nil
}

func nullSlot(slot int) sql.NullInt64 {
	if slot == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(slot), Valid: true}
}
