package note

import "time"

// MaxTitleLength bounds note titles, matching the storage column.
const MaxTitleLength = 255

// Note is a single diary entry owned by one user.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Request carries the payload for note creation and updates.
type Request struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate reports the first request constraint violated, if any.
func (r Request) Validate() string {
	if r.Title == "" {
		return "title is required"
	}
	if len(r.Title) > MaxTitleLength {
		return "title must not exceed 255 characters"
	}
	if r.Content == "" {
		return "content is required"
	}
	return ""
}
