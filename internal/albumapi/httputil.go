package albumapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// httpError sends a JSON error response. clientMsg is returned to the caller;
// internalDetails are only logged.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("HTTP error with internal details")
	}
	respondJSON(w, status, map[string]string{"error": clientMsg})
}
