package ratings

import (
	"fmt"
	"math"
	"strings"
)

// DefaultRating is used for players without a stored rating.
const DefaultRating = 1000.0

// Tiers lists the ranked tiers from lowest to highest.
var Tiers = []string{
	"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM",
	"EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER",
}

// Divisions lists the divisions from lowest to highest.
var Divisions = []string{"IV", "III", "II", "I"}

var tierBase = map[string]float64{
	"IRON":        800,
	"BRONZE":      900,
	"SILVER":      1000,
	"GOLD":        1100,
	"PLATINUM":    1200,
	"EMERALD":     1300,
	"DIAMOND":     1400,
	"MASTER":      1500,
	"GRANDMASTER": 1600,
	"CHALLENGER":  1700,
}

var divisionBonus = map[string]float64{
	"IV":  0,
	"III": 20,
	"II":  40,
	"I":   60,
}

// RankToRating converts a ranked standing into a rating. Unknown tiers count
// as SILVER and unknown divisions add nothing. LP is clamped to 0..100 and
// worth half a point each.
func RankToRating(tier, division string, lp int) float64 {
	base, ok := tierBase[strings.ToUpper(tier)]
	if !ok {
		base = DefaultRating
	}
	bonus := divisionBonus[strings.ToUpper(division)]
	clamped := math.Max(0, math.Min(100, float64(lp)))
	return base + bonus + clamped*0.5
}

// NormalizeRank validates a user supplied standing and returns it upper-cased.
func NormalizeRank(tier, division string) (string, string, error) {
	t := strings.ToUpper(strings.TrimSpace(tier))
	if _, ok := tierBase[t]; !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	d := strings.ToUpper(strings.TrimSpace(division))
	if d == "" {
		return t, "", nil
	}
	if _, ok := divisionBonus[d]; !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidDivision, division)
	}
	return t, d, nil
}

// FormatRank renders a standing as "Gold II 55 LP".
func FormatRank(tier, division string, lp int) string {
	if tier == "" {
		return "Unranked"
	}
	name := strings.ToUpper(tier[:1]) + strings.ToLower(tier[1:])
	if division != "" {
		name += " " + division
	}
	return fmt.Sprintf("%s %d LP", name, lp)
}
