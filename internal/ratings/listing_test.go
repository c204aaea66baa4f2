package ratings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{0: DefaultLimit, 1: 5, 5: 5, 42: 42, 100: 100, 500: 100, -3: 5} {
		assert.Equal(t, want, ClampLimit(in), "limit %d", in)
	}
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderRatingAsc, ParseOrder("RATING_ASC"))
	assert.Equal(t, OrderID, ParseOrder("id"))
	assert.Equal(t, OrderRatingDesc, ParseOrder(""))
	assert.Equal(t, OrderRatingDesc, ParseOrder("name"))
}

func TestSort(t *testing.T) {
	entries := func() []Entry {
		return []Entry{
			{UserID: 3, Rating: 1100},
			{UserID: 1, Rating: 1200},
			{UserID: 2, Rating: 1100},
		}
	}
	ids := func(es []Entry) []int64 {
		out := make([]int64, len(es))
		for i, e := range es {
			out[i] = e.UserID
		}
		return out
	}

	es := entries()
	Sort(es, OrderRatingDesc)
	assert.Equal(t, []int64{1, 2, 3}, ids(es))

	es = entries()
	Sort(es, OrderRatingAsc)
	assert.Equal(t, []int64{2, 3, 1}, ids(es))

	es = entries()
	Sort(es, OrderID)
	assert.Equal(t, []int64{1, 2, 3}, ids(es))
}

func TestFormatLine(t *testing.T) {
	e := Entry{
		UserID: 42,
		Rating: 1167.5,
		Rated:  true,
		Link:   &Link{UserID: 42, SummonerName: "Teemo", Region: "EUW"},
		Rank:   &Rank{Tier: "GOLD", Division: "II", LP: 55},
	}
	assert.Equal(t, "1. <@42> 1168 🔗 (Gold II 55 LP)", FormatLine(1, e))
	assert.Equal(t, "2. <@7> 1000 ·default", FormatLine(2, Entry{UserID: 7, Rating: DefaultRating}))
}
