package ratings

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new RatingStore.
func New(db *sql.DB) RatingStore {
	return &store{
		db: db,
	}
}

// GetRatings returns the stored ratings of ids. Players without one are absent.
func (s *store) GetRatings(ids []int64) (map[int64]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := "SELECT user_id, rating FROM ratings WHERE user_id IN (" + placeholders(len(ids)) + ")"
	rows, err := s.db.Query(query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		out[id] = rating
	}
	return out, rows.Err()
}

// SetRating stores a rating for a user.
func (s *store) SetRating(userID int64, rating float64) error {
	if rating < 0 || rating > MaxRating {
		return ErrInvalidRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := upsertRating(s.db, userID, rating); err != nil {
		return err
	}
	log.Info("Set rating", "user", userID, "rating", rating)
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertRating(db execer, userID int64, rating float64) error {
	_, err := db.Exec(`
		INSERT INTO ratings (user_id, rating, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET rating = excluded.rating, updated_at = excluded.updated_at
	`, userID, rating, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}
	return nil
}

// SetLink stores or replaces the account linked to a user.
func (s *store) SetLink(link Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO lol_links (user_id, summoner_name, region) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET summoner_name = excluded.summoner_name, region = excluded.region
	`, link.UserID, link.SummonerName, strings.ToUpper(link.Region))
	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	log.Info("Linked account", "user", link.UserID, "summoner", link.SummonerName, "region", link.Region)
	return nil
}

// GetLink returns the account linked to a user or ErrNotFound.
func (s *store) GetLink(userID int64) (*Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link := Link{UserID: userID}
	err := s.db.QueryRow("SELECT summoner_name, region FROM lol_links WHERE user_id = ?", userID).
		Scan(&link.SummonerName, &link.Region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load link: %w", err)
	}
	return &link, nil
}

// GetRank returns the stored standing of a user or ErrNotFound.
func (s *store) GetRank(userID int64) (*Rank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rank := Rank{UserID: userID}
	var division sql.NullString
	var updatedAt int64
	err := s.db.QueryRow("SELECT source, tier, division, lp, updated_at FROM lol_ranks WHERE user_id = ?", userID).
		Scan(&rank.Source, &rank.Tier, &division, &rank.LP, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rank: %w", err)
	}
	rank.Division = division.String
	rank.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &rank, nil
}

// ApplyRank stores a standing and sets the rating derived from it.
func (s *store) ApplyRank(rank Rank) (float64, error) {
	tier, division, err := NormalizeRank(rank.Tier, rank.Division)
	if err != nil {
		return 0, err
	}
	rating := RankToRating(tier, division, rank.LP)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO lol_ranks (user_id, source, tier, division, lp, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			source = excluded.source, tier = excluded.tier, division = excluded.division,
			lp = excluded.lp, updated_at = excluded.updated_at
	`, rank.UserID, rank.Source, tier, nullable(division), rank.LP, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to upsert rank: %w", err)
	}
	if err := upsertRating(tx, rank.UserID, rating); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rank: %w", err)
	}
	log.Info("Applied rank", "user", rank.UserID, "source", rank.Source, "tier", tier, "division", division, "lp", rank.LP, "rating", rating)
	return rating, nil
}

// ListEntries joins ratings, links and ranks per user, ordered by user id.
func (s *store) ListEntries(ids []int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make(map[int64]*Entry)
	entry := func(id int64) *Entry {
		e, ok := entries[id]
		if !ok {
			e = &Entry{UserID: id, Rating: DefaultRating}
			entries[id] = e
		}
		return e
	}
	for _, id := range ids {
		entry(id)
	}

	filter, args := "", []any(nil)
	if len(ids) > 0 {
		filter = " WHERE user_id IN (" + placeholders(len(ids)) + ")"
		args = int64Args(ids)
	}

	rows, err := s.db.Query("SELECT user_id, rating FROM ratings"+filter, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	for rows.Next() {
		var id int64
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		e := entry(id)
		e.Rating, e.Rated = rating, true
	}
	rows.Close()

	rows, err = s.db.Query("SELECT user_id, summoner_name, region FROM lol_links"+filter, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.UserID, &l.SummonerName, &l.Region); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		entry(l.UserID).Link = &l
	}
	rows.Close()

	rows, err = s.db.Query("SELECT user_id, source, tier, division, lp, updated_at FROM lol_ranks"+filter, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranks: %w", err)
	}
	for rows.Next() {
		var r Rank
		var division sql.NullString
		var updatedAt int64
		if err := rows.Scan(&r.UserID, &r.Source, &r.Tier, &division, &r.LP, &updatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan rank: %w", err)
		}
		r.Division = division.String
		r.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		entry(r.UserID).Rank = &r
	}
	rows.Close()

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
