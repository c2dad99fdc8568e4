package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diarylab/backend/internal/middleware"
	"github.com/diarylab/backend/internal/model/user"
	userservice "github.com/diarylab/backend/internal/service/user"
	"github.com/diarylab/backend/pkg/utils"
)

// Handler serves the authentication endpoints.
type Handler struct {
	userSvc *userservice.Service
}

// New creates the auth handler.
func New(userSvc *userservice.Service) *Handler {
	return &Handler{userSvc: userSvc}
}

// RegisterRoutes registers the unauthenticated endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signin", h.handleSignin)
}

// RegisterProtectedRoutes registers endpoints behind the auth middleware.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
}

func (h *Handler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var payload user.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.userSvc.Login(r.Context(), payload)
	if err != nil {
		if errors.Is(err, userservice.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	utils.RespondJSON(w, http.StatusOK, user.Info{
		ID:       account.ID,
		Username: account.Username,
		Role:     account.Role,
	})
}
