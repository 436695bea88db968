package session

import "context"

// Store defines the persistence interface for session records.
// Implementations must be safe for concurrent use: two requests for the
// same session can be in flight simultaneously, and data mutations are
// read-modify-write with last-write-wins semantics.
type Store interface {
	// Save writes the record under its (user id, session id) key with a
	// fresh TTL.
	Save(ctx context.Context, sess *Session) error
	// Get fetches a record and, as a side effect, refreshes its TTL.
	// Returns ErrNotFound for missing or expired records.
	Get(ctx context.Context, userID, sessionID string) (*Session, error)
	// Update merges patch into the record's data map and persists it.
	Update(ctx context.Context, userID, sessionID string, patch map[string]any) (*Session, error)
	// Replace swaps the record's data map wholesale and persists it.
	Replace(ctx context.Context, userID, sessionID string, data map[string]any) (*Session, error)
	// Destroy removes a single record. Returns ErrNotFound when there is
	// nothing to remove.
	Destroy(ctx context.Context, userID, sessionID string) error
	// DestroyAll removes every record in the user's namespace and returns
	// the count. Implementations must scan incrementally in bounded
	// batches rather than blocking the shared store.
	DestroyAll(ctx context.Context, userID string) (int, error)
}
