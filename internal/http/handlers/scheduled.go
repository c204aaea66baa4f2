package handlers

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squadroll/internal/voice"
)

// SweepResult is the body returned by the voice sweep.
type SweepResult struct {
	Deleted int  `json:"deleted"`
	DryRun  bool `json:"dry_run"`
}

// SweepHandler deletes expired team voice channels. It backs scheduled jobs
// and runs alongside the in-process ticker.
func SweepHandler(manager voice.VoiceManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting voice sweep...")
		if IsDryRunFromContext(r) {
			log.Info("[Dry Run] Would have swept expired voice channels")
			respondJSON(w, http.StatusOK, SweepResult{DryRun: true})
			return
		}
		n, err := manager.Sweep(r.Context(), time.Now())
		if err != nil {
			log.Error("Voice sweep failed", "error", err)
			http.Error(w, "Failed to sweep voice channels", http.StatusInternalServerError)
			return
		}
		log.Info("Voice sweep finished.", "deleted", n)
		respondJSON(w, http.StatusOK, SweepResult{Deleted: n})
	}
}
