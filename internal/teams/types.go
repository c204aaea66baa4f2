package teams

import "errors"

// DefaultRating is used for players without a stored rating.
const DefaultRating = 1000.0

// Mode selects how the partitioner places players.
type Mode string

const (
	ModeBalanced Mode = "balanced"
	ModeRandom   Mode = "random"
)

// ParseMode maps user input to a Mode. Anything other than "random" is balanced.
func ParseMode(s string) Mode {
	if Mode(s) == ModeRandom {
		return ModeRandom
	}
	return ModeBalanced
}

const (
	MinTeams = 2
	MaxTeams = 6
)

var (
	ErrInvalidTeamCount = errors.New("team count must be between 2 and 6")
	ErrNotEnoughPlayers = errors.New("not enough players for the requested team count")
	ErrInvalidSizes     = errors.New("sizes must list one size per team adding up to the player count")
)

// Player is a roster entry with its rating.
type Player struct {
	ID     int64   `json:"id" msgpack:"id"`
	Rating float64 `json:"rating" msgpack:"rating"`
}

// Group is a set of players that must share a team.
type Group []Player

// Score is the sum of member ratings.
func (g Group) Score() float64 {
	var s float64
	for _, p := range g {
		s += p.Rating
	}
	return s
}

// Pair is an unordered pair of player ids, stored with A < B.
type Pair struct {
	A int64 `json:"a" msgpack:"a"`
	B int64 `json:"b" msgpack:"b"`
}

// NewPair normalizes the order of a and b.
func NewPair(a, b int64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Team is an ordered list of players.
type Team []Player

// Total is the sum of member ratings.
func (t Team) Total() float64 {
	var s float64
	for _, p := range t {
		s += p.Rating
	}
	return s
}

// IDs returns the member ids in team order.
func (t Team) IDs() []int64 {
	ids := make([]int64, len(t))
	for i, p := range t {
		ids[i] = p.ID
	}
	return ids
}

// Assignment is a full split of a roster into teams.
type Assignment struct {
	Teams []Team `json:"teams"`
	Sizes []int  `json:"sizes"`
}

// IDs returns the member ids of every team.
func (a Assignment) IDs() [][]int64 {
	out := make([][]int64, len(a.Teams))
	for i, t := range a.Teams {
		out[i] = t.IDs()
	}
	return out
}

// Totals returns the rating total of every team.
func (a Assignment) Totals() []float64 {
	out := make([]float64, len(a.Teams))
	for i, t := range a.Teams {
		out[i] = t.Total()
	}
	return out
}

// Spread is the difference between the highest and lowest team total.
func (a Assignment) Spread() float64 {
	if len(a.Teams) == 0 {
		return 0
	}
	totals := a.Totals()
	lo, hi := totals[0], totals[0]
	for _, v := range totals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// PlayerCount is the number of placed players.
func (a Assignment) PlayerCount() int {
	n := 0
	for _, t := range a.Teams {
		n += len(t)
	}
	return n
}

// Request is the input of one partitioning run.
type Request struct {
	Players []Player
	Sizes   []int
	Groups  []Group
	Avoid   []Pair
	Mode    Mode
}

// Result is the output of one partitioning run.
type Result struct {
	Assignment
	// Violations lists the avoid pairs that ended up on the same team, sorted and unique.
	Violations []Pair
	// Overflow is set when a group had to be forced into a full team.
	Overflow bool
}
