package arena

import (
	"database/sql"
	"errors"
	"sync"
)

var (
	ErrActiveArena = errors.New("an arena is already running in this guild")
	ErrNotFound    = errors.New("arena not found")
)

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
