package ratings

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/riot"
	"github.com/mauv0809/squadroll/internal/teams"
)

// Resolution is the outcome of resolving ratings for a roster.
type Resolution struct {
	Players []teams.Player
	// Defaulted lists players that fell back to DefaultRating.
	Defaulted []int64
	// Imported lists players whose rating was fetched from Riot.
	Imported []int64
}

// Resolver looks up ratings, importing ranked standings for linked accounts.
type Resolver struct {
	store   RatingStore
	riot    riot.RiotClient
	metrics metrics.Metrics
	usage   metrics.MetricsStore
}

// NewResolver creates a Resolver. client may be nil when no Riot API key is configured.
func NewResolver(store RatingStore, client riot.RiotClient, m metrics.Metrics, usage metrics.MetricsStore) *Resolver {
	return &Resolver{store: store, riot: client, metrics: m, usage: usage}
}

// CanImport reports whether a Riot client is configured.
func (r *Resolver) CanImport() bool {
	return r.riot != nil
}

// Resolve returns the players of ids with ratings, in input order. Stored
// ratings win; linked accounts without a rating are imported from Riot when
// autoImport is set; the rest default to DefaultRating.
func (r *Resolver) Resolve(ctx context.Context, ids []int64, autoImport bool) (*Resolution, error) {
	stored, err := r.store.GetRatings(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	res := &Resolution{Players: make([]teams.Player, 0, len(ids))}
	for _, id := range ids {
		rating, ok := stored[id]
		if !ok && autoImport && r.riot != nil {
			imported, err := r.importLinked(ctx, id)
			switch {
			case err == nil:
				rating, ok = imported, true
				res.Imported = append(res.Imported, id)
			case errors.Is(err, ErrNotFound):
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				log.Warn("Riot import failed, using default rating", "user", id, "error", err)
			}
		}
		if !ok {
			rating = DefaultRating
			res.Defaulted = append(res.Defaulted, id)
		}
		res.Players = append(res.Players, teams.Player{ID: id, Rating: rating})
	}
	return res, nil
}

func (r *Resolver) importLinked(ctx context.Context, userID int64) (float64, error) {
	link, err := r.store.GetLink(userID)
	if err != nil {
		return 0, err
	}
	_, rating, err := r.Import(ctx, *link)
	return rating, err
}

// Import fetches the ranked standing of a linked account and applies it.
func (r *Resolver) Import(ctx context.Context, link Link) (*Rank, float64, error) {
	if r.riot == nil {
		return nil, 0, riot.ErrNoAPIKey
	}
	platform, err := riot.PlatformFor(link.Region)
	if err != nil {
		return nil, 0, err
	}

	r.metrics.IncRiotLookups()
	info, err := r.riot.FetchRank(ctx, platform, link.SummonerName)
	if err != nil {
		r.metrics.IncRiotFailures()
		return nil, 0, fmt.Errorf("failed to fetch rank for %s: %w", link.SummonerName, err)
	}

	rank := Rank{
		UserID:   link.UserID,
		Source:   SourceRiot,
		Tier:     info.Tier,
		Division: info.Division,
		LP:       info.LP,
	}
	rating, err := r.store.ApplyRank(rank)
	if err != nil {
		return nil, 0, err
	}
	if r.usage != nil {
		r.usage.Increment(metrics.KeyRiotImports)
	}
	return &rank, rating, nil
}
