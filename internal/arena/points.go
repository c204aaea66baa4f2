package arena

const MaxRank = 8

// PointsForRank is the fixed arena table: rank 1 earns 8 points down to rank
// 8 earning 1. Anything else earns nothing.
func PointsForRank(rank int) int {
	if rank < 1 || rank > MaxRank {
		return 0
	}
	return 9 - rank
}
