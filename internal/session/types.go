package session

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Session is a named sequence of rolls within a guild. Pair counts and
// signatures are scoped to it.
type Session struct {
	ID        int64     `json:"id"`
	GuildID   int64     `json:"guild_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Scope narrows signature operations to one roster and size list.
type Scope struct {
	PlayerFP string
	SizeFP   string
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// ErrNotFound is returned when no session matches the guild and name.
var ErrNotFound = errors.New("session not found")
