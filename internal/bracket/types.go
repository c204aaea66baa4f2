package bracket

import (
	"database/sql"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Kind tells whether competitors are single players or teams.
type Kind string

const (
	KindSolo Kind = "solo"
	KindTeam Kind = "team"
)

// State is the lifecycle of a tournament.
type State string

const (
	StateSetup     State = "setup"
	StateRunning   State = "running"
	StateFinished  State = "finished"
	StateCancelled State = "cancelled"
)

// MatchStatus is the lifecycle of a match.
type MatchStatus string

const (
	// MatchPending waits for at least one competitor.
	MatchPending MatchStatus = "pending"
	// MatchOpen has both competitors and can be reported.
	MatchOpen MatchStatus = "open"
	MatchDone MatchStatus = "done"
)

var (
	ErrTooFewParticipants = errors.New("a bracket needs at least 2 participants")
	ErrUnknownMatch       = errors.New("match is not part of this tournament")
	ErrMatchDone          = errors.New("match already reported")
	ErrMatchNotReady      = errors.New("match is still waiting for its competitors")
	ErrByeSlot            = errors.New("slot is a bye")
	ErrInvalidWinner      = errors.New("winner must be slot 1 or 2")
	ErrInvalidScore       = errors.New("scores cannot be negative")

	ErrActiveTournament = errors.New("a tournament is already active in this guild")
	ErrNotFound         = errors.New("tournament not found")
	ErrNotSetup         = errors.New("tournament is not in setup")
	ErrNotRunning       = errors.New("tournament is not running")
)

// Competitor occupies a bracket slot: one player in solo tournaments, a whole
// team otherwise.
type Competitor struct {
	Members []int64 `json:"members"`
	Seed    int     `json:"seed"`
	Rating  float64 `json:"rating"`
}

// Key identifies a competitor by its sorted members.
func (c Competitor) Key() string {
	ids := slices.Clone(c.Members)
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Has reports whether id is a member.
func (c Competitor) Has(id int64) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// Match is one node of the single-elimination tree. Next is the index of the
// match the winner moves to, or -1 for the final.
type Match struct {
	ID       int64       `json:"id"`
	Round    int         `json:"round"`
	Pos      int         `json:"pos"`
	Slot1    *Competitor `json:"slot1"`
	Slot2    *Competitor `json:"slot2"`
	Score1   int         `json:"score1"`
	Score2   int         `json:"score2"`
	Winner   int         `json:"winner"`
	Status   MatchStatus `json:"status"`
	BestOf   int         `json:"best_of"`
	Next     int         `json:"next"`
	NextSlot int         `json:"next_slot"`
	NextID   int64       `json:"next_id,omitempty"`
}

// Slot returns the competitor in slot 1 or 2.
func (m *Match) Slot(n int) *Competitor {
	switch n {
	case 1:
		return m.Slot1
	case 2:
		return m.Slot2
	}
	return nil
}

// SlotOf returns the slot holding the given member, or 0.
func (m *Match) SlotOf(userID int64) int {
	if m.Slot1 != nil && m.Slot1.Has(userID) {
		return 1
	}
	if m.Slot2 != nil && m.Slot2.Has(userID) {
		return 2
	}
	return 0
}

// IsBye reports whether the match was decided at build time.
func (m *Match) IsBye() bool {
	return m.Status == MatchDone && (m.Slot1 == nil) != (m.Slot2 == nil)
}

// WinnerCompetitor returns the winning competitor of a done match.
func (m *Match) WinnerCompetitor() *Competitor {
	if m.Status != MatchDone {
		return nil
	}
	return m.Slot(m.Winner)
}

// Tournament is a single-elimination event of a guild.
type Tournament struct {
	ID         int64       `json:"id"`
	GuildID    int64       `json:"guild_id"`
	Name       string      `json:"name"`
	Kind       Kind        `json:"kind"`
	State      State       `json:"state"`
	BestOf     int         `json:"best_of"`
	CreatedBy  int64       `json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Winner     *Competitor `json:"winner,omitempty"`
}

// Participant is a registered competitor.
type Participant struct {
	Competitor
	ID int64 `json:"id"`
}

// Outcome is the effect of a reported match.
type Outcome struct {
	Match *Match
	// Next is the match the winner moved to, nil after the final.
	Next *Match
	// Champion is set when the final was reported.
	Champion *Competitor
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
