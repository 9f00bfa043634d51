// Command discord-receiver stands in for a Discord channel webhook during local runs.
// Point DISCORD_WEBHOOK_URL at http://localhost:8081/webhook to see what would be posted.
package main

import (
	"encoding/json"
	"net/http"

	"github.com/DIMO-Network/server-garage/pkg/logging"
	"github.com/DIMO-Network/shop-notifier/internal/services/discordsender"
	"github.com/rs/zerolog"
)

func webhookHandler(logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg discordsender.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}
		event := logger.Info().Str("username", msg.Username)
		if msg.Content != "" {
			event = event.Str("content", msg.Content)
		}
		for _, embed := range msg.Embeds {
			event = event.Str("title", embed.Title).Str("description", embed.Description)
		}
		event.Msg("Discord message received")
		w.WriteHeader(http.StatusNoContent)
	}
}

func main() {
	logger := logging.GetAndSetDefaultLogger("discord-receiver")
	http.HandleFunc("/webhook", webhookHandler(logger))
	logger.Info().Msg("Discord receiver listening on :8081")
	if err := http.ListenAndServe(":8081", nil); err != nil { //nolint:gosec
		logger.Fatal().Err(err).Msg("Receiver stopped")
	}
}
