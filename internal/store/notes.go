package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diarylab/backend/internal/model/note"
)

// ErrNoteNotFound signals a note that does not exist or belongs to another user.
var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `id, user_id, title, content, created_at, updated_at`

// CreateNote inserts a note for userID and returns the stored row.
func (s *Store) CreateNote(ctx context.Context, userID int64, title, content string) (note.Note, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (user_id, title, content) VALUES (?, ?, ?)`,
		userID, title, content)
	if err != nil {
		return note.Note{}, fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return note.Note{}, fmt.Errorf("read note id: %w", err)
	}

	return s.NoteByID(ctx, id, userID)
}

// NoteByID fetches one note scoped to its owner.
func (s *Store) NoteByID(ctx context.Context, id, userID int64) (note.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`,
		id, userID)
	return scanNote(row)
}

// NotesByUser lists a user's notes, most recently updated first.
func (s *Store) NotesByUser(ctx context.Context, userID int64) ([]note.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY updated_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

// UpdateNote rewrites title and content, refreshing updated_at. Returns
// ErrNoteNotFound when the note is absent or owned by someone else.
func (s *Store) UpdateNote(ctx context.Context, id, userID int64, title, content string) (note.Note, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		title, content, id, userID)
	if err != nil {
		return note.Note{}, fmt.Errorf("update note: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return note.Note{}, fmt.Errorf("update note: %w", err)
	}
	if affected == 0 {
		return note.Note{}, ErrNoteNotFound
	}

	return s.NoteByID(ctx, id, userID)
}

// DeleteNote removes a note scoped to its owner.
func (s *Store) DeleteNote(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// SearchNotes matches titles case-insensitively by substring.
func (s *Store) SearchNotes(ctx context.Context, userID int64, title string) ([]note.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes
		 WHERE user_id = ? AND title LIKE '%' || ? || '%' COLLATE NOCASE
		 ORDER BY updated_at DESC, id DESC`,
		userID, title)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer rows.Close()
	return collectNotes(rows)
}

// CountNotes returns the number of notes a user owns.
func (s *Store) CountNotes(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

func scanNote(row *sql.Row) (note.Note, error) {
	var n note.Note
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return note.Note{}, ErrNoteNotFound
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("scan note: %w", err)
	}
	return n, nil
}

func collectNotes(rows *sql.Rows) ([]note.Note, error) {
	notes := make([]note.Note, 0, 16)
	for rows.Next() {
		var n note.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}
