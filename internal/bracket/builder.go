package bracket

import "fmt"

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Build lays out a single-elimination bracket for competitors in seed order.
// The field is padded with byes to a power of two and round one pairs seed i
// with seed size-1-i. Matches are returned round by round; match i of a round
// feeds match i/2 of the next, into slot 1 when i is even. Byes are decided
// immediately and their winner is moved forward.
func Build(seeded []Competitor, bestOf int) ([]Match, error) {
	n := len(seeded)
	if n < 2 {
		return nil, ErrTooFewParticipants
	}
	if bestOf < 1 {
		bestOf = 1
	}
	size := NextPowerOfTwo(n)
	padded := make([]*Competitor, size)
	for i := range seeded {
		c := seeded[i]
		padded[i] = &c
	}

	matches := make([]Match, 0, size-1)
	offset := 0
	for round, count := 1, size/2; count >= 1; round, count = round+1, count/2 {
		nextOffset := offset + count
		for pos := 0; pos < count; pos++ {
			m := Match{
				Round:  round,
				Pos:    pos,
				Status: MatchPending,
				BestOf: bestOf,
				Next:   -1,
			}
			if count > 1 {
				m.Next = nextOffset + pos/2
				m.NextSlot = 1
				if pos%2 == 1 {
					m.NextSlot = 2
				}
			}
			if round == 1 {
				m.Slot1, m.Slot2 = padded[pos], padded[size-1-pos]
			}
			matches = append(matches, m)
		}
		offset = nextOffset
	}

	for i := 0; i < size/2; i++ {
		m := &matches[i]
		switch {
		case m.Slot1 != nil && m.Slot2 != nil:
			m.Status = MatchOpen
		case m.Slot1 != nil || m.Slot2 != nil:
			m.Status = MatchDone
			m.Winner = 1
			if m.Slot1 == nil {
				m.Winner = 2
			}
			advance(matches, i)
		}
	}
	return matches, nil
}

// Report records the result of an open match and moves the winner forward.
// It returns the index of the match the winner moved to, or -1 after the final.
func Report(matches []Match, index, winnerSlot, score1, score2 int) (int, error) {
	if index < 0 || index >= len(matches) {
		return -1, ErrUnknownMatch
	}
	m := &matches[index]
	switch m.Status {
	case MatchDone:
		return -1, ErrMatchDone
	case MatchPending:
		return -1, ErrMatchNotReady
	}
	if winnerSlot != 1 && winnerSlot != 2 {
		return -1, fmt.Errorf("%w: got %d", ErrInvalidWinner, winnerSlot)
	}
	if m.Slot(winnerSlot) == nil {
		return -1, ErrByeSlot
	}
	if score1 < 0 || score2 < 0 {
		return -1, ErrInvalidScore
	}

	m.Score1, m.Score2 = score1, score2
	m.Winner = winnerSlot
	m.Status = MatchDone
	advance(matches, index)
	return m.Next, nil
}

// advance copies the winner of a done match into its successor and opens the
// successor once both slots are filled.
func advance(matches []Match, index int) {
	m := &matches[index]
	if m.Next < 0 {
		return
	}
	next := &matches[m.Next]
	w := m.WinnerCompetitor()
	if m.NextSlot == 1 {
		next.Slot1 = w
	} else {
		next.Slot2 = w
	}
	if next.Slot1 != nil && next.Slot2 != nil && next.Status == MatchPending {
		next.Status = MatchOpen
	}
}

// Champion returns the winner of the final, or nil while it is undecided.
func Champion(matches []Match) *Competitor {
	if len(matches) == 0 {
		return nil
	}
	return matches[len(matches)-1].WinnerCompetitor()
}

// Byes counts the round-one matches decided at build time.
func Byes(matches []Match) int {
	n := 0
	for i := range matches {
		if matches[i].Round == 1 && matches[i].IsBye() {
			n++
		}
	}
	return n
}
