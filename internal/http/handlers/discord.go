package handlers

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
)

// InteractionHandler answers Discord interactions.
type InteractionHandler interface {
	Handle(ctx context.Context, i *discordgo.Interaction, dryRun bool) *discordgo.InteractionResponse
}

// InteractionsHandler serves the Discord interactions endpoint. Requests
// without a valid Ed25519 signature are rejected with 401, which Discord
// requires before it accepts the endpoint.
func InteractionsHandler(publicKey ed25519.PublicKey, bot InteractionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !discordgo.VerifyInteraction(r, publicKey) {
			log.Warn("Rejected interaction with an invalid signature", "remote", r.RemoteAddr)
			http.Error(w, "invalid request signature", http.StatusUnauthorized)
			return
		}

		var interaction discordgo.Interaction
		if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
			log.Error("Failed to decode interaction", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		resp := bot.Handle(r.Context(), &interaction, IsDryRunFromContext(r))
		respondJSON(w, http.StatusOK, resp)
	}
}
