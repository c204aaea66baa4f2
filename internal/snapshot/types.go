package snapshot

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mauv0809/squadroll/internal/teams"
)

// CurrentVersion is the payload layout written by this build.
const CurrentVersion = 1

// ModeArenaRound marks a snapshot written from an arena round, one team per duo.
const ModeArenaRound = "arena_round"

var (
	ErrNotFound           = errors.New("no snapshot for guild")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Snapshot is the last team assignment of a guild. Voice deployment and
// tournament import read it.
type Snapshot struct {
	Version   int               `json:"version"`
	RollID    uuid.UUID         `json:"roll_id"`
	GuildID   int64             `json:"guild_id"`
	Teams     []teams.Team      `json:"teams"`
	Sizes     []int             `json:"sizes"`
	Mode      string            `json:"mode"`
	Session   string            `json:"session,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	CreatedBy int64             `json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewSnapshot stamps an assignment with a fresh roll id and the current version.
func NewSnapshot(guildID, createdBy int64, assignment teams.Assignment, mode string) *Snapshot {
	return &Snapshot{
		Version:   CurrentVersion,
		RollID:    uuid.New(),
		GuildID:   guildID,
		Teams:     assignment.Teams,
		Sizes:     assignment.Sizes,
		Mode:      mode,
		Params:    map[string]string{},
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
}

// Players flattens the teams in order.
func (s *Snapshot) Players() []teams.Player {
	var out []teams.Player
	for _, t := range s.Teams {
		out = append(out, t...)
	}
	return out
}

// IDs returns the member ids of every team.
func (s *Snapshot) IDs() [][]int64 {
	return teams.Assignment{Teams: s.Teams}.IDs()
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
