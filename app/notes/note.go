package notes

import (
	"context"
	"time"
)

// Note is a user-owned record. Every repository operation is scoped by
// owner, so one user can never read or touch another user's notes.
type Note struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository is the persistence boundary for notes.
type Repository interface {
	Create(ctx context.Context, note *Note) error
	// ByID returns ErrNoteNotFound when no note matches the owner and id.
	ByID(ctx context.Context, userID int64, id string) (*Note, error)
	// List returns the owner's notes, newest first.
	List(ctx context.Context, userID int64, limit int) ([]*Note, error)
	// Update returns ErrNoteNotFound when no note matches.
	Update(ctx context.Context, userID int64, id, title, body string) (*Note, error)
	// Delete returns ErrNoteNotFound when no note matches.
	Delete(ctx context.Context, userID int64, id string) error
}
