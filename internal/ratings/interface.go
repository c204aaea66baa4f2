package ratings

// RatingStore persists ratings, account links and ranked standings.
type RatingStore interface {
	GetRatings(ids []int64) (map[int64]float64, error)
	SetRating(userID int64, rating float64) error
	SetLink(link Link) error
	GetLink(userID int64) (*Link, error)
	GetRank(userID int64) (*Rank, error)
	// ApplyRank stores the standing and the rating derived from it together.
	ApplyRank(rank Rank) (float64, error)
	// ListEntries returns the entries of the given users, or of every known
	// user when ids is empty.
	ListEntries(ids []int64) ([]Entry, error)
}
