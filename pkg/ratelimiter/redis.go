package ratelimiter

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamgrid/gateway/pkg/storekey"
)

// DefaultTTLMargin is added to the window when setting key expiry, so a
// key never vanishes while entries inside the window could still matter.
const DefaultTTLMargin = 5 * time.Second

// RedisLimiter is a sliding-window limiter backed by a Redis sorted set
// per key. Each request is a set member scored by its millisecond
// timestamp; a check prunes entries older than the window, records the
// current request, and counts what remains, all in one atomic pipeline,
// so concurrent checks against the same key cannot double-count.
type RedisLimiter struct {
	client    redis.UniversalClient
	ttlMargin time.Duration
}

// RedisOption configures a RedisLimiter.
type RedisOption func(*RedisLimiter)

// WithTTLMargin overrides the safety margin added to key expiry.
func WithTTLMargin(margin time.Duration) RedisOption {
	return func(l *RedisLimiter) {
		if margin > 0 {
			l.ttlMargin = margin
		}
	}
}

// NewRedis creates a Redis-backed sliding-window limiter.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*RedisLimiter, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	l := &RedisLimiter{
		client:    client,
		ttlMargin: DefaultTTLMargin,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow records the current request under key and reports whether it fits
// the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	if limit.IsZero() {
		return nil, ErrInvalidLimit
	}

	key, err := storekey.Sanitize(key)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}

	now := time.Now()
	windowStart := now.Add(-limit.Window)

	member, err := uniqueMember(now)
	if err != nil {
		return nil, err
	}

	var (
		countCmd  *redis.IntCmd
		oldestCmd *redis.ZSliceCmd
	)
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart.UnixMilli(), 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
		countCmd = pipe.ZCard(ctx, key)
		oldestCmd = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, limit.Window+l.ttlMargin)
		return nil
	})
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	count := int(countCmd.Val())

	resetAt := now.Add(limit.Window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		oldestAt := time.UnixMilli(int64(oldest[0].Score))
		resetAt = oldestAt.Add(limit.Window)
	}

	return &Result{
		Limit:     limit.MaxRequests,
		Remaining: limit.MaxRequests - count,
		ResetAt:   resetAt,
	}, nil
}

// uniqueMember builds a set member from the nanosecond timestamp plus a
// random suffix. Two requests landing on the same nanosecond must still
// count twice.
func uniqueMember(now time.Time) (string, error) {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", err
	}
	return strconv.FormatInt(now.UnixNano(), 10) + "-" + hex.EncodeToString(suffix[:]), nil
}
