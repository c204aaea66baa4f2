package ratings

import (
	"fmt"
	"sort"
	"strings"
)

// Order is the sort order of the ratings listing.
type Order string

const (
	OrderRatingDesc Order = "rating_desc"
	OrderRatingAsc  Order = "rating_asc"
	OrderID         Order = "id"
)

// Listing limits.
const (
	MinLimit     = 5
	MaxLimit     = 100
	DefaultLimit = 25
)

// ParseOrder maps an option value to an Order, defaulting to rating_desc.
func ParseOrder(s string) Order {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case OrderRatingAsc:
		return OrderRatingAsc
	case OrderID:
		return OrderID
	default:
		return OrderRatingDesc
	}
}

// ClampLimit bounds a listing size to MinLimit..MaxLimit; zero means DefaultLimit.
func ClampLimit(n int) int {
	switch {
	case n == 0:
		return DefaultLimit
	case n < MinLimit:
		return MinLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// Sort orders entries in place. Rating ties are broken by user id.
func Sort(entries []Entry, order Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch order {
		case OrderRatingAsc:
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		case OrderRatingDesc:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		return a.UserID < b.UserID
	})
}

// FormatLine renders one listing line: position, mention, rating, link mark and rank.
func FormatLine(pos int, e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. <@%d> %.0f", pos, e.UserID, e.Rating)
	if e.Link != nil {
		b.WriteString(" 🔗")
	}
	if e.Rank != nil {
		fmt.Fprintf(&b, " (%s)", e.Rank.String())
	}
	if !e.Rated {
		b.WriteString(" ·default")
	}
	return b.String()
}
