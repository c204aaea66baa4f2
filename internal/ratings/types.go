package ratings

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Rank sources.
const (
	SourceRiot    = "riot"
	SourceOffline = "offline"
)

var (
	ErrNotFound        = errors.New("rating not found")
	ErrInvalidTier     = errors.New("invalid tier")
	ErrInvalidDivision = errors.New("invalid division")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5000")
)

// MaxRating bounds manually set ratings.
const MaxRating = 5000.0

// Link ties a Discord user to a League of Legends account.
type Link struct {
	UserID       int64  `json:"user_id"`
	SummonerName string `json:"summoner_name"`
	Region       string `json:"region"`
}

// Rank is the last known ranked standing of a user.
type Rank struct {
	UserID    int64     `json:"user_id"`
	Source    string    `json:"source"`
	Tier      string    `json:"tier"`
	Division  string    `json:"division,omitempty"`
	LP        int       `json:"lp"`
	UpdatedAt time.Time `json:"updated_at"`
}

// String renders the standing as "Gold II 55 LP".
func (r Rank) String() string {
	return FormatRank(r.Tier, r.Division, r.LP)
}

// Entry is one row of the ratings listing.
type Entry struct {
	UserID int64   `json:"user_id"`
	Rating float64 `json:"rating"`
	Rated  bool    `json:"rated"`
	Link   *Link   `json:"link,omitempty"`
	Rank   *Rank   `json:"rank,omitempty"`
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
