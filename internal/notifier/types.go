package notifier

import (
	"math/rand/v2"

	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/snapshot"
	"github.com/mauv0809/squadroll/internal/teams"
)

// RosterView is a team assignment with the details of how it was produced.
type RosterView struct {
	Snapshot   *snapshot.Snapshot
	Violations []teams.Pair
	Overflow   bool
	Defaulted  []int64
	Imported   []int64
	Search     *SearchSummary
	// IgnoredSizes holds a sizes option that could not be used.
	IgnoredSizes string
	// Title overrides the default heading.
	Title string
}

// SearchSummary describes a session search run.
type SearchSummary struct {
	Session   string
	Penalty   int
	Spread    float64
	Exhausted bool
	Tried     int
	Committed bool
	Seen      int
	Possible  int
}

// BracketView is a tournament with its participants and matches.
type BracketView struct {
	Tournament   *bracket.Tournament
	Participants []bracket.Participant
	Matches      []bracket.Match
	// Highlight is the id of a just reported match, zero for none.
	Highlight int64
}

// RanksView is a sorted, truncated ratings listing.
type RanksView struct {
	Scope   string
	Order   ratings.Order
	Entries []ratings.Entry
	Total   int
}

// Podium splits the final standings of an arena. Loser is set when trash
// talk applies, with the joke to print.
type Podium struct {
	Top   []arena.Standing
	Loser *arena.Standing
	Joke  string
}

// LoserJokes are the captions of the Loser Award.
var LoserJokes = []string{
	"Maybe put the drink down and have a glass of water.",
	"Nobody gets left behind around here. Except you.",
	"Sure, the champions on the other side were broken.",
	"The replay is conclusive: you lost.",
	"Have you considered Minecraft?",
	"Time to admit you are too old for this.",
}

// BuildPodium takes the top three standings and, when trashTalk is set and
// there are at least two participants, the last one with a random joke.
func BuildPodium(a *arena.Arena, trashTalk bool) Podium {
	rows := a.Standings()
	p := Podium{Top: rows[:min(3, len(rows))]}
	if trashTalk && len(rows) >= 2 {
		last := rows[len(rows)-1]
		p.Loser = &last
		p.Joke = LoserJokes[rand.IntN(len(LoserJokes))]
	}
	return p
}
