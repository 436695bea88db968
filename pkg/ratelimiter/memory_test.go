package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/gateway/pkg/ratelimiter"
)

func TestMemoryLimiterBurst(t *testing.T) {
	t.Parallel()

	l := ratelimiter.NewMemory()
	ctx := context.Background()
	limit := ratelimiter.Limit{Window: time.Minute, MaxRequests: 5}

	// Exactly the first N requests pass, the (N+1)th is rejected.
	for i := 1; i <= 5; i++ {
		res, err := l.Allow(ctx, "client:route", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "request %d", i)
		assert.Equal(t, 5-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "client:route", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, -1, res.Remaining)
	assert.Positive(t, res.RetryAfter())
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	t.Parallel()

	l := ratelimiter.NewMemory()
	ctx := context.Background()
	limit := ratelimiter.Limit{Window: 50 * time.Millisecond, MaxRequests: 1}

	res, err := l.Allow(ctx, "k", limit)
	require.NoError(t, err)
	require.True(t, res.Allowed())

	res, err = l.Allow(ctx, "k", limit)
	require.NoError(t, err)
	require.False(t, res.Allowed())

	time.Sleep(60 * time.Millisecond)

	res, err = l.Allow(ctx, "k", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := ratelimiter.NewMemory()
	ctx := context.Background()
	limit := ratelimiter.Limit{Window: time.Minute, MaxRequests: 1}

	res, err := l.Allow(ctx, "a", limit)
	require.NoError(t, err)
	require.True(t, res.Allowed())

	res, err = l.Allow(ctx, "b", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestMemoryLimiterInvalidInput(t *testing.T) {
	t.Parallel()

	l := ratelimiter.NewMemory()
	ctx := context.Background()

	_, err := l.Allow(ctx, "k", ratelimiter.Limit{})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidLimit)

	_, err = l.Allow(ctx, "", ratelimiter.Limit{Window: time.Second, MaxRequests: 1})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidKey)
}

func TestMemoryLimiterConcurrentChecks(t *testing.T) {
	t.Parallel()

	l := ratelimiter.NewMemory()
	ctx := context.Background()
	limit := ratelimiter.Limit{Window: time.Minute, MaxRequests: 50}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Allow(ctx, "shared", limit)
			require.NoError(t, err)
			if res.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestMemoryLimiterPrune(t *testing.T) {
	t.Parallel()

	l := ratelimiter.NewMemory()
	ctx := context.Background()
	limit := ratelimiter.Limit{Window: 10 * time.Millisecond, MaxRequests: 1}

	_, err := l.Allow(ctx, "stale", limit)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	l.Prune(10 * time.Millisecond)

	// A pruned key behaves like a fresh one.
	res, err := l.Allow(ctx, "stale", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}
