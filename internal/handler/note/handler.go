package note

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/diarylab/backend/internal/middleware"
	notemodel "github.com/diarylab/backend/internal/model/note"
	noteservice "github.com/diarylab/backend/internal/service/note"
	"github.com/diarylab/backend/internal/store"
	"github.com/diarylab/backend/pkg/utils"
)

// Handler serves the per-user note endpoints. All routes assume the auth
// middleware already attached the caller's account.
type Handler struct {
	noteSvc *noteservice.Service
}

// New creates the note handler.
func New(noteSvc *noteservice.Service) *Handler {
	return &Handler{noteSvc: noteSvc}
}

// RegisterRoutes registers the note endpoints on an authenticated router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/search", h.handleSearch)
		r.Get("/count", h.handleCount)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	notes, err := h.noteSvc.List(r.Context(), account.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}

	utils.RespondData(w, http.StatusOK, "Notes retrieved successfully", notes)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parseID(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	found, err := h.noteSvc.Get(r.Context(), id, account.ID)
	if err != nil {
		respondNoteError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, "Note found", found)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var payload notemodel.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := payload.Validate(); msg != "" {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.noteSvc.Create(r.Context(), account.ID, payload)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	utils.RespondData(w, http.StatusCreated, "Note created successfully", created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parseID(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var payload notemodel.Request
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := payload.Validate(); msg != "" {
		utils.RespondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.noteSvc.Update(r.Context(), id, account.ID, payload)
	if err != nil {
		respondNoteError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, "Note updated successfully", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parseID(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := h.noteSvc.Delete(r.Context(), id, account.ID); err != nil {
		respondNoteError(w, err)
		return
	}

	utils.RespondData(w, http.StatusOK, "Note deleted successfully", "Deleted")
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	title := r.URL.Query().Get("title")
	notes, err := h.noteSvc.Search(r.Context(), account.ID, title)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "search failed")
		return
	}

	utils.RespondData(w, http.StatusOK, "Search completed", notes)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	count, err := h.noteSvc.Count(r.Context(), account.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "count failed")
		return
	}

	utils.RespondData(w, http.StatusOK, "Note count retrieved", count)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respondNoteError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNoteNotFound) {
		utils.RespondError(w, http.StatusNotFound, "Note not found")
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, "note operation failed")
}
