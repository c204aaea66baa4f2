package teams

const (
	DefaultAttempts = 200
	MinAttempts     = 20
	MaxAttempts     = 5000
)

// ClampAttempts bounds the number of search iterations. Zero means the default.
func ClampAttempts(n int) int {
	if n == 0 {
		n = DefaultAttempts
	}
	return max(MinAttempts, min(MaxAttempts, n))
}

// SearchOptions carries the session history the search scores against.
type SearchOptions struct {
	Attempts   int
	PairCounts map[Pair]int
	Seen       map[string]struct{}
}

// Outcome is the selected candidate with its scores.
type Outcome struct {
	Result
	Penalty   int
	Spread    float64
	Signature string
	// Exhausted is set when every generated composition had been seen before.
	Exhausted bool
	// Tried is the number of candidates generated before returning.
	Tried int
}

// Searcher runs the repetition-minimizing search over a Partitioner.
type Searcher struct {
	partitioner Partitioner
	shuffler    Shuffler
}

// NewSearcher wires a partitioner with the shuffler used to vary group order
// between balanced attempts.
func NewSearcher(p Partitioner, s Shuffler) *Searcher {
	return &Searcher{partitioner: p, shuffler: s}
}

// Search generates up to the clamped number of candidates. The first candidate
// with an unseen signature wins; when none is unseen the best candidate by
// (penalty, spread) is returned with Exhausted set.
func (s *Searcher) Search(req Request, opts SearchOptions) Outcome {
	attempts := ClampAttempts(opts.Attempts)

	var best, unseen *Outcome
	tried := 0
	for range attempts {
		tried++
		res := s.partitioner.Partition(s.attemptRequest(req))
		ids := res.IDs()
		cand := Outcome{
			Result:    res,
			Penalty:   RepetitionPenalty(ids, opts.PairCounts),
			Spread:    res.Spread(),
			Signature: Signature(ids),
		}
		if best == nil || better(cand, *best) {
			c := cand
			best = &c
		}
		if unseen == nil {
			if _, seen := opts.Seen[cand.Signature]; !seen {
				c := cand
				unseen = &c
			}
		}
		if unseen != nil && unseen.Penalty == 0 {
			break
		}
	}

	if unseen != nil {
		unseen.Tried = tried
		return *unseen
	}
	best.Exhausted = true
	best.Tried = tried
	return *best
}

// attemptRequest permutes the group order for balanced runs so ties in group
// score resolve differently between attempts.
func (s *Searcher) attemptRequest(req Request) Request {
	if req.Mode == ModeRandom || s.shuffler == nil {
		return req
	}
	groups := req.Groups
	if groups == nil {
		groups = BuildGroups(req.Players, "")
	}
	shuffled := make([]Group, len(groups))
	copy(shuffled, groups)
	s.shuffler.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	out := req
	out.Groups = shuffled
	return out
}

func better(a, b Outcome) bool {
	if a.Penalty != b.Penalty {
		return a.Penalty < b.Penalty
	}
	return a.Spread < b.Spread
}
