package ratelimiter

import (
	"context"
	"time"
)

// Limit describes a sliding-window request budget: at most MaxRequests
// within any trailing Window.
type Limit struct {
	Window      time.Duration
	MaxRequests int
}

// IsZero reports whether no limit is configured. A zero limit means
// unlimited; the pipeline skips the limiter entirely.
func (l Limit) IsZero() bool {
	return l.Window <= 0 || l.MaxRequests <= 0
}

// Result describes the outcome of a limiter check.
type Result struct {
	// Limit is the maximum number of requests per window.
	Limit int
	// Remaining is the budget left after counting the current request.
	// Negative when the limit is exceeded.
	Remaining int
	// ResetAt is when the oldest request in the window falls out of it,
	// freeing budget again.
	ResetAt time.Time
}

// Allowed reports whether the current request is within the limit.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long the client should wait before retrying.
// Zero when the request was allowed or the reset time already passed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	if d := time.Until(r.ResetAt); d > 0 {
		return d
	}
	return 0
}

// Limiter checks a keyed request against a sliding-window limit. The
// current request is always recorded, whether or not it is allowed.
//
// Implementations return an error only for backend failures; callers are
// expected to fail open on error so a degraded limiter never blocks
// otherwise healthy traffic.
type Limiter interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}
