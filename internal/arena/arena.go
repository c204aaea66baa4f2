package arena

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// State is the lifecycle of an arena.
type State string

const (
	StateRunning   State = "running"
	StateFinished  State = "finished"
	StateCancelled State = "cancelled"
)

var (
	ErrNotRunning   = errors.New("arena is not running")
	ErrRankTaken    = errors.New("rank already reported this round")
	ErrDuoReported  = errors.New("duo already reported this round")
	ErrNoMoreRounds = errors.New("no round left to play")
)

// Progress tracks what has been reported in the current round.
type Progress struct {
	// Ranks maps the 0-based duo index to its reported rank.
	Ranks map[int]int `json:"ranks"`
}

// Arena is a round-robin 2v2 event with individual scoring.
type Arena struct {
	ID           int64         `json:"id"`
	GuildID      int64         `json:"guild_id"`
	State        State         `json:"state"`
	RoundsTotal  int           `json:"rounds_total"`
	CurrentRound int           `json:"current_round"`
	Participants []int64       `json:"participants"`
	Schedule     []Round       `json:"schedule"`
	Scores       map[int64]int `json:"scores"`
	Progress     Progress      `json:"progress"`
	CreatedBy    int64         `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Standing is one row of the scoreboard.
type Standing struct {
	UserID int64 `json:"user_id"`
	Points int   `json:"points"`
}

// ReportResult describes what a report changed.
type ReportResult struct {
	Placements []Placement
	// Round is the round the placements were recorded for.
	Round    int
	Advanced bool
	Finished bool
}

// New schedules an arena for the participants. rounds outside 1..N-1 means
// every round of the full rotation.
func New(guildID, createdBy int64, participants []int64, rounds int) (*Arena, error) {
	if len(participants) > MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	seen := make(map[int64]struct{}, len(participants))
	for _, id := range participants {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	full, err := RoundRobinDuos(participants)
	if err != nil {
		return nil, err
	}
	if rounds <= 0 || rounds > len(full) {
		rounds = len(full)
	}

	now := time.Now().UTC()
	return &Arena{
		GuildID:      guildID,
		State:        StateRunning,
		RoundsTotal:  rounds,
		CurrentRound: 1,
		Participants: append([]int64(nil), participants...),
		Schedule:     full[:rounds],
		Scores:       make(map[int64]int, len(participants)),
		Progress:     Progress{Ranks: map[int]int{}},
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CurrentDuos returns the duos of the round being played.
func (a *Arena) CurrentDuos() Round {
	if a.CurrentRound < 1 || a.CurrentRound > len(a.Schedule) {
		return nil
	}
	return a.Schedule[a.CurrentRound-1]
}

// Pending lists the 1-based numbers of the duos without a rank this round.
func (a *Arena) Pending() []int {
	var out []int
	for i := range a.CurrentDuos() {
		if _, ok := a.Progress.Ranks[i]; !ok {
			out = append(out, i+1)
		}
	}
	return out
}

// Report parses, validates and applies a report atomically. Once every duo
// of the round has a rank the arena moves to the next round, or finishes
// after the last one.
func (a *Arena) Report(text string) (*ReportResult, error) {
	if a.State != StateRunning {
		return nil, ErrNotRunning
	}
	round := a.CurrentDuos()
	if round == nil {
		return nil, ErrNoMoreRounds
	}

	tokens, err := ParseReport(text)
	if err != nil {
		return nil, err
	}
	placements, err := Validate(tokens, round)
	if err != nil {
		return nil, err
	}
	if a.Progress.Ranks == nil {
		a.Progress.Ranks = map[int]int{}
	}
	taken := make(map[int]struct{}, len(a.Progress.Ranks))
	for _, r := range a.Progress.Ranks {
		taken[r] = struct{}{}
	}
	for _, p := range placements {
		if _, ok := a.Progress.Ranks[p.Index]; ok {
			return nil, fmt.Errorf("%w: duo %d", ErrDuoReported, p.Index+1)
		}
		if _, ok := taken[p.Rank]; ok {
			return nil, fmt.Errorf("%w: rank %d", ErrRankTaken, p.Rank)
		}
	}

	if a.Scores == nil {
		a.Scores = make(map[int64]int)
	}
	for _, p := range placements {
		a.Scores[p.Duo[0]] += p.Points
		a.Scores[p.Duo[1]] += p.Points
		a.Progress.Ranks[p.Index] = p.Rank
	}
	res := &ReportResult{Placements: placements, Round: a.CurrentRound}
	if len(a.Progress.Ranks) == len(round) {
		res.Advanced = true
		a.advance()
		res.Finished = a.State == StateFinished
	}
	a.UpdatedAt = time.Now().UTC()
	return res, nil
}

// Advance moves to the next round even if some duos have no rank.
func (a *Arena) Advance() error {
	if a.State != StateRunning {
		return ErrNotRunning
	}
	a.advance()
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Arena) advance() {
	a.Progress = Progress{Ranks: map[int]int{}}
	if a.CurrentRound >= a.RoundsTotal {
		a.State = StateFinished
		return
	}
	a.CurrentRound++
}

// Stop finishes a running arena early.
func (a *Arena) Stop() error {
	if a.State != StateRunning {
		return ErrNotRunning
	}
	a.State = StateFinished
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel abandons a running arena.
func (a *Arena) Cancel() error {
	if a.State != StateRunning {
		return ErrNotRunning
	}
	a.State = StateCancelled
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Standings lists every participant by points descending, then by id.
func (a *Arena) Standings() []Standing {
	out := make([]Standing, len(a.Participants))
	for i, id := range a.Participants {
		out[i] = Standing{UserID: id, Points: a.Scores[id]}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
