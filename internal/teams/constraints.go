package teams

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var mentionRe = regexp.MustCompile(`<@!?(\d+)>`)

// ParseMentions extracts user ids from Discord mentions, keeping first-seen order.
func ParseMentions(text string) []int64 {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	out := make([]int64, 0, len(matches))
	seen := make(map[int64]struct{}, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ParseSizes reads a "3/3/2" size list. The list is used only when it has k
// entries summing to total, otherwise the players are split evenly.
func ParseSizes(text string, total, k int) []int {
	if nums, ok := sizeList(text, total, k); ok {
		return nums
	}
	return EvenSizes(total, k)
}

// CheckSizes returns ErrInvalidSizes when text is set but ParseSizes would
// ignore it.
func CheckSizes(text string, total, k int) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, ok := sizeList(text, total, k); !ok {
		return fmt.Errorf("%w: %q for %d players in %d teams", ErrInvalidSizes, text, total, k)
	}
	return nil
}

// sizeList skips entries that are not non-negative numbers.
func sizeList(text string, total, k int) ([]int, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	var nums []int
	sum := 0
	for _, part := range strings.Split(text, "/") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			continue
		}
		nums = append(nums, n)
		sum += n
	}
	return nums, len(nums) == k && sum == total
}

// EvenSizes splits total into k sizes, the first total%k teams get one extra slot.
func EvenSizes(total, k int) []int {
	if k <= 0 {
		return nil
	}
	base, rem := total/k, total%k
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// BuildGroups turns "@A @B | @C @D" into groups restricted to the roster.
// Players not mentioned in any chunk become singleton groups, so the result
// always covers the roster exactly once.
func BuildGroups(players []Player, text string) []Group {
	byID := make(map[int64]Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	used := make(map[int64]struct{}, len(players))
	var groups []Group
	for _, chunk := range strings.Split(text, "|") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		var g Group
		for _, id := range ParseMentions(chunk) {
			p, ok := byID[id]
			if !ok {
				continue
			}
			if _, taken := used[id]; taken {
				continue
			}
			used[id] = struct{}{}
			g = append(g, p)
		}
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	for _, p := range players {
		if _, ok := used[p.ID]; !ok {
			groups = append(groups, Group{p})
		}
	}
	return groups
}

// ParseAvoidPairs reads "@A @B ; @C @D" into unique pairs.
func ParseAvoidPairs(text string) []Pair {
	var pairs []Pair
	seen := make(map[Pair]struct{})
	for _, chunk := range strings.Split(text, ";") {
		ids := ParseMentions(chunk)
		if len(ids) < 2 || ids[0] == ids[1] {
			continue
		}
		p := NewPair(ids[0], ids[1])
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}
	return pairs
}

// ValidateRoll checks the caller-level preconditions of a roll.
func ValidateRoll(teamCount, playerCount int) error {
	if teamCount < MinTeams || teamCount > MaxTeams {
		return fmt.Errorf("%w: got %d", ErrInvalidTeamCount, teamCount)
	}
	if playerCount < teamCount {
		return fmt.Errorf("%w: %d players for %d teams", ErrNotEnoughPlayers, playerCount, teamCount)
	}
	return nil
}

// Mention renders a user id as a Discord mention.
func Mention(id int64) string {
	return "<@" + strconv.FormatInt(id, 10) + ">"
}
