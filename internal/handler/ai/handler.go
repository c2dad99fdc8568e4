package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diarylab/backend/internal/middleware"
	aiservice "github.com/diarylab/backend/internal/service/ai"
	"github.com/diarylab/backend/internal/ws"
	"github.com/diarylab/backend/pkg/utils"
)

// Generator is the synchronous completion surface used by the REST endpoint.
type Generator interface {
	GenerateFromTemplate(ctx context.Context, templateID string, vars map[string]any) (string, error)
}

// Handler serves the REST AI endpoints next to the websocket chat.
type Handler struct {
	generator Generator
	registry  *ws.Registry
}

// New creates the AI handler.
func New(generator Generator, registry *ws.Registry) *Handler {
	return &Handler{generator: generator, registry: registry}
}

// RegisterRoutes registers the AI endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ai/generate", h.handleGenerate)
	r.Get("/ai/websocket/status", h.handleStatus)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai generation unavailable")
		return
	}

	templateID := r.URL.Query().Get("template")
	if templateID == "" {
		templateID = "default"
	}

	var vars map[string]any
	if err := json.NewDecoder(r.Body).Decode(&vars); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := h.generator.GenerateFromTemplate(r.Context(), templateID, vars)
	if err != nil {
		if errors.Is(err, aiservice.ErrUnknownTemplate) || errors.Is(err, aiservice.ErrMissingVariables) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "Error generating response: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	snapshot := h.registry.Snapshot()
	_, connected := snapshot[account.Username]

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"activeSessions": len(snapshot),
		"userConnected":  connected,
		"currentUser":    account.Username,
	})
}
