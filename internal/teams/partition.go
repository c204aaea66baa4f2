package teams

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Shuffler permutes n elements in place.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand returns a Shuffler safe for concurrent use, seeded for reproducible runs.
func NewRand(seed uint64) Shuffler {
	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

// Partitioner splits a roster into teams.
type Partitioner interface {
	Partition(req Request) Result
}

type partitioner struct {
	shuffler Shuffler
}

// NewPartitioner returns the canonical partitioner.
func NewPartitioner(shuffler Shuffler) Partitioner {
	return &partitioner{shuffler: shuffler}
}

func (p *partitioner) Partition(req Request) Result {
	if req.Mode == ModeRandom {
		return p.random(req.Players, req.Sizes)
	}
	groups := req.Groups
	if groups == nil {
		groups = BuildGroups(req.Players, "")
	}
	return Balance(groups, req.Sizes, req.Avoid)
}

// random shuffles the roster and deals players round-robin into teams with
// free capacity. A player that fits nowhere goes to the smallest team.
func (p *partitioner) random(players []Player, sizes []int) Result {
	k := len(sizes)
	arr := make([]Player, len(players))
	copy(arr, players)
	p.shuffler.Shuffle(len(arr), func(i, j int) { arr[i], arr[j] = arr[j], arr[i] })

	teams := make([]Team, k)
	res := Result{}
	cursor := 0
	for _, pl := range arr {
		placed := false
		for range k {
			idx := cursor % k
			cursor++
			if len(teams[idx]) < sizes[idx] {
				teams[idx] = append(teams[idx], pl)
				placed = true
				break
			}
		}
		if !placed {
			idx := smallestTeam(teams)
			teams[idx] = append(teams[idx], pl)
			res.Overflow = true
			log.Warn("Random split overflowed team capacity", "team", idx+1, "player", pl.ID)
		}
	}
	res.Assignment = Assignment{Teams: teams, Sizes: append([]int(nil), sizes...)}
	return res
}

// Balance places groups greedily, highest group score first. Each group goes
// to the team with capacity minimizing (conflicts, total, occupancy, index).
// It is deterministic for a given group order.
func Balance(groups []Group, sizes []int, avoid []Pair) Result {
	k := len(sizes)
	avoidSet := make(map[Pair]struct{}, len(avoid))
	for _, pr := range avoid {
		avoidSet[NewPair(pr.A, pr.B)] = struct{}{}
	}

	units := make([]Group, len(groups))
	copy(units, groups)
	sort.SliceStable(units, func(i, j int) bool { return units[i].Score() > units[j].Score() })

	teams := make([]Team, k)
	totals := make([]float64, k)
	violated := make(map[Pair]struct{})
	res := Result{}

	for _, grp := range units {
		best := -1
		var bestConflicts int
		for idx := range k {
			if len(teams[idx])+len(grp) > sizes[idx] {
				continue
			}
			c := conflicts(grp, teams[idx], avoidSet)
			if best < 0 || lessCandidate(c, totals[idx], len(teams[idx]), bestConflicts, totals[best], len(teams[best])) {
				best, bestConflicts = idx, c
			}
		}
		if best < 0 {
			best = smallestTeam(teams)
			bestConflicts = conflicts(grp, teams[best], avoidSet)
			res.Overflow = true
			log.Warn("Group does not fit any team, forcing placement", "team", best+1, "group_size", len(grp))
		}
		if bestConflicts > 0 {
			for _, m := range grp {
				for _, e := range teams[best] {
					pr := NewPair(m.ID, e.ID)
					if _, ok := avoidSet[pr]; ok {
						violated[pr] = struct{}{}
					}
				}
			}
		}
		teams[best] = append(teams[best], grp...)
		totals[best] += grp.Score()
	}

	res.Assignment = Assignment{Teams: teams, Sizes: append([]int(nil), sizes...)}
	res.Violations = sortedPairs(violated)
	return res
}

// lessCandidate compares (conflicts, total, occupancy); the index tie-break is
// implied by scanning teams in order and replacing only on strict improvement.
func lessCandidate(c int, total float64, occ int, bc int, btotal float64, bocc int) bool {
	if c != bc {
		return c < bc
	}
	if total != btotal {
		return total < btotal
	}
	return occ < bocc
}

func conflicts(grp Group, team Team, avoid map[Pair]struct{}) int {
	if len(avoid) == 0 {
		return 0
	}
	n := 0
	for _, m := range grp {
		for _, e := range team {
			if _, ok := avoid[NewPair(m.ID, e.ID)]; ok {
				n++
			}
		}
	}
	return n
}

func smallestTeam(teams []Team) int {
	idx := 0
	for i := range teams {
		if len(teams[i]) < len(teams[idx]) {
			idx = i
		}
	}
	return idx
}

func sortedPairs(set map[Pair]struct{}) []Pair {
	out := make([]Pair, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
