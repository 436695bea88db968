package ratelimiter

import "errors"

var (
	// ErrInvalidLimit is returned when Allow is called with a zero or
	// negative limit. Unlimited routes must skip the limiter, not pass
	// a zero limit through it.
	ErrInvalidLimit = errors.New("invalid rate limit")
	// ErrInvalidKey is returned when the limiter key is empty or fails
	// sanitization.
	ErrInvalidKey = errors.New("invalid rate limit key")
	// ErrNilClient is returned when constructing a Redis limiter without
	// a client.
	ErrNilClient = errors.New("redis client is required")
	// ErrStoreUnavailable wraps backend failures. Callers fail open on it.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
