package notifier

import (
	"fmt"
	"strings"

	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/teams"
)

// Labeler renders a user id for a given platform.
type Labeler func(id int64) string

// MentionLabel renders Discord mentions.
func MentionLabel(id int64) string { return teams.Mention(id) }

// Join renders several users separated by sep.
func (l Labeler) Join(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = l(id)
	}
	return strings.Join(parts, sep)
}

// TeamLines renders one line per member with its rating.
func (l Labeler) TeamLines(t teams.Team) []string {
	out := make([]string, len(t))
	for i, p := range t {
		out[i] = fmt.Sprintf("• %s (%.0f)", l(p.ID), p.Rating)
	}
	return out
}

// Competitor renders a bracket slot. An empty slot reads BYE in a decided
// round-one match and TBD elsewhere.
func (l Labeler) Competitor(c *bracket.Competitor, bye bool) string {
	if c == nil {
		if bye {
			return "BYE"
		}
		return "TBD"
	}
	label := l.Join(c.Members, " & ")
	if c.Seed > 0 {
		label = fmt.Sprintf("(%d) %s", c.Seed, label)
	}
	return label
}

// MatchLine renders a match as "M12 (1) A vs (4) B — 2-1 ✅".
func (l Labeler) MatchLine(m bracket.Match) string {
	bye := m.IsBye()
	line := fmt.Sprintf("M%d %s vs %s", m.ID, l.Competitor(m.Slot1, bye), l.Competitor(m.Slot2, bye))
	switch {
	case bye:
		line += " · bye"
	case m.Status == bracket.MatchDone:
		line += fmt.Sprintf(" · %d-%d ✅ %s", m.Score1, m.Score2, l.Competitor(m.WinnerCompetitor(), false))
	case m.Status == bracket.MatchOpen:
		if m.BestOf > 1 {
			line += fmt.Sprintf(" · Bo%d", m.BestOf)
		}
		line += " · open"
	}
	return line
}

// RoundTitle names a bracket round given the total number of rounds.
func RoundTitle(round, rounds int) string {
	switch rounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	}
	return fmt.Sprintf("Round %d", round)
}

// Rounds groups matches by round, preserving order.
func Rounds(matches []bracket.Match) [][]bracket.Match {
	var out [][]bracket.Match
	for _, m := range matches {
		for len(out) < m.Round {
			out = append(out, nil)
		}
		out[m.Round-1] = append(out[m.Round-1], m)
	}
	return out
}

// DuoLines renders the duos of the current round with their reported ranks.
func (l Labeler) DuoLines(a *arena.Arena) []string {
	round := a.CurrentDuos()
	out := make([]string, len(round))
	for i, duo := range round {
		line := fmt.Sprintf("Duo %d · %s & %s", i+1, l(duo[0]), l(duo[1]))
		if rank, ok := a.Progress.Ranks[i]; ok {
			line += fmt.Sprintf(" · top %d (+%d)", rank, arena.PointsForRank(rank))
		}
		out[i] = line
	}
	return out
}

// StandingLines renders "#1 · user · 12 pts" lines.
func (l Labeler) StandingLines(rows []arena.Standing) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("#%d · %s · %d pts", i+1, l(r.UserID), r.Points)
	}
	return out
}

// RosterNotes lists the caveats of a roll: ignored sizes, violated avoid
// pairs, overflow, defaulted and imported ratings.
func (l Labeler) RosterNotes(view RosterView) []string {
	var notes []string
	if view.IgnoredSizes != "" {
		notes = append(notes, fmt.Sprintf("⚠️ Sizes %q ignored, using an even split", view.IgnoredSizes))
	}
	if len(view.Violations) > 0 {
		pairs := make([]string, len(view.Violations))
		for i, p := range view.Violations {
			pairs[i] = l(p.A) + " + " + l(p.B)
		}
		notes = append(notes, "⚠️ Could not separate: "+strings.Join(pairs, ", "))
	}
	if view.Overflow {
		notes = append(notes, "⚠️ A group did not fit and was placed in the smallest team")
	}
	if len(view.Imported) > 0 {
		notes = append(notes, fmt.Sprintf("📥 Imported %d rank(s) from Riot", len(view.Imported)))
	}
	if len(view.Defaulted) > 0 {
		notes = append(notes, fmt.Sprintf("ℹ️ %d player(s) without rating counted as 1000", len(view.Defaulted)))
	}
	return notes
}

// SearchLine summarizes a session search.
func SearchLine(s *SearchSummary) string {
	if s == nil {
		return ""
	}
	line := fmt.Sprintf("Session %s · repeats %d · spread %.0f · tried %d", s.Session, s.Penalty, s.Spread, s.Tried)
	if s.Possible > 0 {
		line += fmt.Sprintf(" · pairs seen %d/%d", s.Seen, s.Possible)
	}
	if s.Exhausted {
		line += " · every composition already seen, showing the best one"
	}
	if !s.Committed {
		line += " · not saved"
	}
	return line
}
