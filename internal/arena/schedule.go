package arena

import "errors"

const (
	MinPlayers = 4
	MaxPlayers = 16
)

var (
	ErrOddPlayers      = errors.New("arena needs an even number of players")
	ErrTooFewPlayers   = errors.New("arena needs at least 4 players")
	ErrTooManyPlayers  = errors.New("arena takes at most 16 players")
	ErrDuplicatePlayer = errors.New("player listed twice")
)

// Duo is two players sharing a round.
type Duo [2]int64

// Normalized orders the ids ascending so duos compare by membership.
func (d Duo) Normalized() Duo {
	if d[0] > d[1] {
		return Duo{d[1], d[0]}
	}
	return d
}

// Has reports whether id is one of the two players.
func (d Duo) Has(id int64) bool {
	return d[0] == id || d[1] == id
}

// Round is the list of duos playing at the same time. Duo numbers shown to
// users are 1-based positions in it.
type Round []Duo

// RoundRobinDuos schedules N-1 rounds with the circle method so that every
// pair of players is a duo exactly once. The last id stays fixed while the
// others rotate right by one each round; position i plays position n-1-i.
func RoundRobinDuos(ids []int64) ([]Round, error) {
	n := len(ids)
	if n%2 != 0 {
		return nil, ErrOddPlayers
	}
	if n < MinPlayers {
		return nil, ErrTooFewPlayers
	}

	fixed := ids[n-1]
	rot := make([]int64, n-1)
	copy(rot, ids[:n-1])

	rounds := make([]Round, 0, n-1)
	line := make([]int64, n)
	for range n - 1 {
		copy(line, rot)
		line[n-1] = fixed
		round := make(Round, 0, n/2)
		for i := 0; i < n/2; i++ {
			round = append(round, Duo{line[i], line[n-1-i]})
		}
		rounds = append(rounds, round)
		rot = append([]int64{rot[len(rot)-1]}, rot[:len(rot)-1]...)
	}
	return rounds, nil
}
