package arena

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mauv0809/squadroll/internal/teams"
)

var (
	ErrEmptyReport    = errors.New("report is empty")
	ErrMissingRank    = errors.New("missing ':rank'")
	ErrInvalidRank    = errors.New("rank is not a number")
	ErrUnreadableDuo  = errors.New("cannot read a duo")
	ErrRankOutOfRange = errors.New("rank must be between 1 and 8")
	ErrDuplicateRank  = errors.New("rank given twice")
	ErrUnknownDuo     = errors.New("duo is not part of the current round")
	ErrDuplicateDuo   = errors.New("duo given twice")
)

// ReportError ties a report failure to the chunk that caused it.
type ReportError struct {
	Chunk string
	Err   error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("%s in %q", e.Err, e.Chunk)
}

func (e *ReportError) Unwrap() error { return e.Err }

// Token is one parsed "duo:rank" chunk of a report.
type Token interface {
	Rank() int
	Chunk() string
}

// DuoIndexToken names a duo by its 1-based position in the round.
type DuoIndexToken struct {
	Index int
	Place int
	Raw   string
}

func (t DuoIndexToken) Rank() int { return t.Place }
func (t DuoIndexToken) Chunk() string { return t.Raw }

// MentionPairToken names a duo by mentioning both players.
type MentionPairToken struct {
	Pair  Duo
	Place int
	Raw   string
}

func (t MentionPairToken) Rank() int { return t.Place }
func (t MentionPairToken) Chunk() string { return t.Raw }

// Placement is a validated result for one duo of the round.
type Placement struct {
	// Index is the 0-based position of the duo in the round.
	Index  int `json:"index"`
	Duo    Duo `json:"duo"`
	Rank   int `json:"rank"`
	Points int `json:"points"`
}

// ParseReport reads "#1:1 | 3:6 | @A @B:7". Each chunk is split on its last
// ':'; the left side is a duo number (optionally prefixed by '#', 'd' or
// 'duo') or exactly two mentions. Parsing checks syntax only.
func ParseReport(text string) ([]Token, error) {
	var tokens []Token
	for _, raw := range strings.Split(text, "|") {
		chunk := strings.TrimSpace(raw)
		if chunk == "" {
			continue
		}
		tok, err := parseChunk(chunk)
		if err != nil {
			return nil, &ReportError{Chunk: chunk, Err: err}
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyReport
	}
	return tokens, nil
}

func parseChunk(chunk string) (Token, error) {
	sep := strings.LastIndex(chunk, ":")
	if sep < 0 {
		return nil, ErrMissingRank
	}
	left := strings.TrimSpace(chunk[:sep])
	rank, err := strconv.Atoi(strings.TrimSpace(chunk[sep+1:]))
	if err != nil {
		return nil, ErrInvalidRank
	}

	if idx, ok := parseDuoIndex(left); ok {
		return DuoIndexToken{Index: idx, Place: rank, Raw: chunk}, nil
	}
	ids := teams.ParseMentions(left)
	if len(ids) != 2 {
		return nil, ErrUnreadableDuo
	}
	return MentionPairToken{Pair: Duo{ids[0], ids[1]}.Normalized(), Place: rank, Raw: chunk}, nil
}

func parseDuoIndex(s string) (int, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.TrimPrefix(t, "#")
	if rest, ok := strings.CutPrefix(t, "duo"); ok {
		t = rest
	} else {
		t = strings.TrimPrefix(t, "d")
	}
	n, err := strconv.Atoi(strings.TrimSpace(t))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate resolves tokens against the round. It fails on the first chunk
// with an out-of-range rank, a rank or duo given twice, or a duo that does
// not play this round, so a report is applied entirely or not at all.
func Validate(tokens []Token, round Round) ([]Placement, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyReport
	}
	byPair := make(map[Duo]int, len(round))
	for i, d := range round {
		byPair[d.Normalized()] = i
	}

	usedRanks := make(map[int]struct{}, len(tokens))
	usedDuos := make(map[int]struct{}, len(tokens))
	out := make([]Placement, 0, len(tokens))
	for _, tok := range tokens {
		rank := tok.Rank()
		if rank < 1 || rank > MaxRank {
			return nil, &ReportError{Chunk: tok.Chunk(), Err: ErrRankOutOfRange}
		}
		if _, dup := usedRanks[rank]; dup {
			return nil, &ReportError{Chunk: tok.Chunk(), Err: ErrDuplicateRank}
		}

		var idx int
		switch t := tok.(type) {
		case DuoIndexToken:
			if t.Index < 1 || t.Index > len(round) {
				return nil, &ReportError{Chunk: t.Raw, Err: ErrUnknownDuo}
			}
			idx = t.Index - 1
		case MentionPairToken:
			i, ok := byPair[t.Pair]
			if !ok {
				return nil, &ReportError{Chunk: t.Raw, Err: ErrUnknownDuo}
			}
			idx = i
		default:
			return nil, &ReportError{Chunk: tok.Chunk(), Err: ErrUnreadableDuo}
		}
		if _, dup := usedDuos[idx]; dup {
			return nil, &ReportError{Chunk: tok.Chunk(), Err: ErrDuplicateDuo}
		}

		usedRanks[rank] = struct{}{}
		usedDuos[idx] = struct{}{}
		out = append(out, Placement{
			Index:  idx,
			Duo:    round[idx],
			Rank:   rank,
			Points: PointsForRank(rank),
		})
	}
	return out, nil
}
