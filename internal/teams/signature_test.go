package teams_test

import (
	"testing"

	"github.com/mauv0809/squadroll/internal/teams"
	"github.com/stretchr/testify/assert"
)

func TestSignatureIsOrderIndependent(t *testing.T) {
	a := teams.Signature([][]int64{{3, 1}, {2, 4}})
	b := teams.Signature([][]int64{{4, 2}, {1, 3}})
	assert.Equal(t, a, b)
	assert.Equal(t, "1,3|2,4", a)

	moved := teams.Signature([][]int64{{1, 3, 2}, {4}})
	assert.NotEqual(t, a, moved)
}

func TestFingerprints(t *testing.T) {
	assert.Equal(t, "1,2,9", teams.PlayerFingerprint([]int64{9, 2, 1, 2}))
	assert.Equal(t, "3,3,2", teams.SizeFingerprint([]int{3, 3, 2}))
	assert.NotEqual(t, teams.SizeFingerprint([]int{2, 3, 3}), teams.SizeFingerprint([]int{3, 3, 2}))
}

func TestRepetitionPenalty(t *testing.T) {
	comp := [][]int64{{1, 2, 3}, {4, 5}}
	assert.Len(t, teams.TeammatePairs(comp), 4)

	counts := map[teams.Pair]int{
		teams.NewPair(2, 1): 2,
		teams.NewPair(3, 2): 1,
		teams.NewPair(1, 4): 7,
	}
	assert.Equal(t, 3, teams.RepetitionPenalty(comp, counts))
	assert.Equal(t, 0, teams.RepetitionPenalty(comp, nil))
}
