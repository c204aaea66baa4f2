package teams

import (
	"slices"
	"strconv"
	"strings"
)

const (
	memberSep = ","
	teamSep   = "|"
)

// Signature canonicalizes a composition so that the same team contents in any
// member or team order yield the same string.
func Signature(teams [][]int64) string {
	parts := make([]string, len(teams))
	for i, t := range teams {
		ids := slices.Clone(t)
		slices.Sort(ids)
		parts[i] = joinIDs(ids, memberSep)
	}
	slices.Sort(parts)
	return strings.Join(parts, teamSep)
}

// PlayerFingerprint is the sorted, de-duplicated id list joined by commas.
func PlayerFingerprint(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return joinIDs(slices.Compact(sorted), ",")
}

// SizeFingerprint joins the size list in its given order.
func SizeFingerprint(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

// TeammatePairs lists every unordered pair of players sharing a team.
func TeammatePairs(teams [][]int64) []Pair {
	var out []Pair
	for _, t := range teams {
		for i := 0; i < len(t); i++ {
			for j := i + 1; j < len(t); j++ {
				out = append(out, NewPair(t[i], t[j]))
			}
		}
	}
	return out
}

// RepetitionPenalty sums how often each teammate pair has already played together.
func RepetitionPenalty(teams [][]int64, counts map[Pair]int) int {
	if len(counts) == 0 {
		return 0
	}
	total := 0
	for _, p := range TeammatePairs(teams) {
		total += counts[p]
	}
	return total
}

func joinIDs(ids []int64, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, sep)
}
