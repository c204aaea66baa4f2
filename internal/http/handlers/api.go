package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/arena"
	"github.com/mauv0809/squadroll/internal/bracket"
	"github.com/mauv0809/squadroll/internal/metrics"
	"github.com/mauv0809/squadroll/internal/ratings"
	"github.com/mauv0809/squadroll/internal/snapshot"
)

// RatingsPage is the body of GET /api/ratings.
type RatingsPage struct {
	Order   ratings.Order   `json:"order"`
	Total   int             `json:"total"`
	Entries []ratings.Entry `json:"entries"`
}

// TournamentView is the body of GET /api/guilds/{guildID}/tournament.
type TournamentView struct {
	Tournament   *bracket.Tournament   `json:"tournament"`
	Participants []bracket.Participant `json:"participants"`
	Matches      []bracket.Match       `json:"matches"`
}

// StatsHandler returns every usage counter, or only the one named by ?key=.
func StatsHandler(usage metrics.MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key := r.URL.Query().Get("key"); key != "" {
			value, err := usage.Get(key)
			if err != nil {
				http.Error(w, "Failed to get stats", http.StatusInternalServerError)
				log.Error("Failed to get usage counter", "error", err, "key", key)
				return
			}
			respondJSON(w, http.StatusOK, map[string]int{key: value})
			return
		}
		counters, err := usage.GetAll()
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			log.Error("Failed to get usage counters", "error", err)
			return
		}
		respondJSON(w, http.StatusOK, counters)
	}
}

// RatingsHandler lists stored ratings. Query parameters sort and limit follow /ranks.
func RatingsHandler(store ratings.RatingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.ListEntries(nil)
		if err != nil {
			http.Error(w, "Failed to get ratings", http.StatusInternalServerError)
			log.Error("Failed to list ratings", "error", err)
			return
		}
		order := ratings.ParseOrder(r.URL.Query().Get("sort"))
		ratings.Sort(entries, order)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page := RatingsPage{Order: order, Total: len(entries), Entries: entries}
		if n := ratings.ClampLimit(limit); len(entries) > n {
			page.Entries = entries[:n]
		}
		respondJSON(w, http.StatusOK, page)
	}
}

func SnapshotHandler(store snapshot.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guild, ok := guildID(r)
		if !ok {
			http.Error(w, "Invalid guild id", http.StatusBadRequest)
			return
		}
		snap, err := store.Get(guild)
		if errors.Is(err, snapshot.ErrNotFound) {
			http.Error(w, "No snapshot", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to get snapshot", http.StatusInternalServerError)
			log.Error("Failed to get snapshot", "error", err, "guild", guild)
			return
		}
		respondJSON(w, http.StatusOK, snap)
	}
}

func TournamentHandler(store bracket.TournamentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guild, ok := guildID(r)
		if !ok {
			http.Error(w, "Invalid guild id", http.StatusBadRequest)
			return
		}
		t, err := store.GetActiveTournament(guild)
		if errors.Is(err, bracket.ErrNotFound) {
			http.Error(w, "No active tournament", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to get tournament", http.StatusInternalServerError)
			log.Error("Failed to get tournament", "error", err, "guild", guild)
			return
		}
		view := TournamentView{Tournament: t}
		if view.Participants, err = store.ListParticipants(t.ID); err == nil {
			view.Matches, err = store.ListMatches(t.ID)
		}
		if err != nil {
			http.Error(w, "Failed to get bracket", http.StatusInternalServerError)
			log.Error("Failed to get bracket", "error", err, "tournament", t.ID)
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func ArenaHandler(store arena.ArenaStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		guild, ok := guildID(r)
		if !ok {
			http.Error(w, "Invalid guild id", http.StatusBadRequest)
			return
		}
		a, err := store.GetActive(guild)
		if errors.Is(err, arena.ErrNotFound) {
			http.Error(w, "No running arena", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Failed to get arena", http.StatusInternalServerError)
			log.Error("Failed to get arena", "error", err, "guild", guild)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}
