package ratings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankToRating(t *testing.T) {
	tests := []struct {
		tier, division string
		lp             int
		want           float64
	}{
		{"IRON", "IV", 0, 800},
		{"gold", "ii", 55, 1167.5},
		{"DIAMOND", "I", 100, 1510},
		{"CHALLENGER", "", 1200, 1750},
		{"PLATINUM", "III", -40, 1220},
		{"WOOD", "I", 0, 1060},
	}
	for _, tt := range tests {
		t.Run(tt.tier+tt.division, func(t *testing.T) {
			assert.Equal(t, tt.want, RankToRating(tt.tier, tt.division, tt.lp))
		})
	}
}

func TestNormalizeRank(t *testing.T) {
	tier, division, err := NormalizeRank(" emerald ", "iii")
	require.NoError(t, err)
	assert.Equal(t, "EMERALD", tier)
	assert.Equal(t, "III", division)

	tier, division, err = NormalizeRank("master", "")
	require.NoError(t, err)
	assert.Equal(t, "MASTER", tier)
	assert.Empty(t, division)

	_, _, err = NormalizeRank("wood", "I")
	assert.ErrorIs(t, err, ErrInvalidTier)
	_, _, err = NormalizeRank("GOLD", "V")
	assert.ErrorIs(t, err, ErrInvalidDivision)
}

func TestFormatRank(t *testing.T) {
	assert.Equal(t, "Gold II 55 LP", FormatRank("GOLD", "II", 55))
	assert.Equal(t, "Grandmaster 310 LP", FormatRank("GRANDMASTER", "", 310))
	assert.Equal(t, "Unranked", FormatRank("", "", 0))
}
