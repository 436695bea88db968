package session

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/teamgrid/gateway/pkg/userid"
)

// Session is the server-side record behind a session token. It is keyed in
// the store by (user id, session id); the token a client holds only
// references it.
//
// UserID is the canonical digit-only identifier, "0" for anonymous
// sessions. It is set exactly once per session: authentication never
// mutates a live record in place, it destroys the old record and mints a
// new one (see Manager.Login), which closes session fixation attacks.
type Session struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New creates an unsaved session record for the given normalized user id,
// carrying over the provided data map (copied, never aliased).
func New(normalizedUserID string, data map[string]any) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    normalizedUserID,
		Data:      maps.Clone(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewAnonymous creates an unsaved anonymous session record.
func NewAnonymous() *Session {
	return New(userid.Anonymous, nil)
}

// IsAnonymous reports whether the session belongs to no authenticated user.
func (s *Session) IsAnonymous() bool {
	return userid.IsAnonymous(s.UserID)
}
