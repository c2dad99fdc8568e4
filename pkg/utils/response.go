package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// APIResponse is the envelope wrapping every REST payload.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RespondData wraps data in a success envelope.
func RespondData(w http.ResponseWriter, status int, message string, data any) {
	RespondJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

// RespondError writes a failure envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, APIResponse{Success: false, Message: message})
}
