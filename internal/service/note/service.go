package note

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/diarylab/backend/internal/model/note"
	"github.com/diarylab/backend/internal/store"
)

// Service exposes per-user note operations over the store.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

// NewService wires the note service.
func NewService(st *store.Store, log zerolog.Logger) *Service {
	return &Service{store: st, log: log.With().Str("component", "note-service").Logger()}
}

// List returns the user's notes, most recently updated first.
func (s *Service) List(ctx context.Context, userID int64) ([]note.Note, error) {
	return s.store.NotesByUser(ctx, userID)
}

// Get fetches one note scoped to its owner.
func (s *Service) Get(ctx context.Context, id, userID int64) (note.Note, error) {
	return s.store.NoteByID(ctx, id, userID)
}

// Create stores a new note for the user.
func (s *Service) Create(ctx context.Context, userID int64, req note.Request) (note.Note, error) {
	created, err := s.store.CreateNote(ctx, userID, req.Title, req.Content)
	if err != nil {
		return note.Note{}, err
	}
	s.log.Debug().Int64("user_id", userID).Int64("note_id", created.ID).Msg("note created")
	return created, nil
}

// Update rewrites a note's title and content.
func (s *Service) Update(ctx context.Context, id, userID int64, req note.Request) (note.Note, error) {
	return s.store.UpdateNote(ctx, id, userID, req.Title, req.Content)
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	return s.store.DeleteNote(ctx, id, userID)
}

// Search matches the user's notes by title substring, case-insensitively.
func (s *Service) Search(ctx context.Context, userID int64, title string) ([]note.Note, error) {
	return s.store.SearchNotes(ctx, userID, title)
}

// Count reports how many notes the user owns.
func (s *Service) Count(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountNotes(ctx, userID)
}
