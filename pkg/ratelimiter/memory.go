package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process sliding-window limiter. It mirrors the
// semantics of RedisLimiter for single-node deployments and tests, but
// state is lost on restart and not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewMemory creates an in-memory sliding-window limiter.
func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
	}
}

// Allow records the current request under key and reports whether it fits
// the limit.
func (l *MemoryLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	if limit.IsZero() {
		return nil, ErrInvalidLimit
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	now := time.Now()
	windowStart := now.Add(-limit.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.windows[key]
	pruned := entries[:0]
	for _, at := range entries {
		if at.After(windowStart) {
			pruned = append(pruned, at)
		}
	}
	pruned = append(pruned, now)
	l.windows[key] = pruned

	resetAt := pruned[0].Add(limit.Window)

	return &Result{
		Limit:     limit.MaxRequests,
		Remaining: limit.MaxRequests - len(pruned),
		ResetAt:   resetAt,
	}, nil
}

// Prune drops windows whose entries have all expired relative to maxAge.
// Call periodically to keep long-running processes from accumulating keys
// for clients that are long gone.
func (l *MemoryLimiter) Prune(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entries := range l.windows {
		if len(entries) == 0 || entries[len(entries)-1].Before(cutoff) {
			delete(l.windows, key)
		}
	}
}
