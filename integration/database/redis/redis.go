package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client from the configuration, retrying transient
// failures with exponential backoff and verifying connectivity with a ping
// before returning. The caller owns the returned client and must Close it.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			// Exponential backoff: interval, 2*interval, 4*interval, ...
			backoff := cfg.RetryInterval * time.Duration(1<<(attempt-1))
			select {
			case <-connectCtx.Done():
				return nil, errors.Join(ErrRedisNotReady, connectCtx.Err(), lastErr)
			case <-time.After(backoff):
			}
		}

		client := redis.NewClient(opts)
		if err := client.Ping(connectCtx).Err(); err != nil {
			lastErr = err
			_ = client.Close()
			continue
		}
		return client, nil
	}

	return nil, errors.Join(ErrRedisNotReady, fmt.Errorf("after %d attempts", attempts), lastErr)
}

// Healthcheck returns a function that pings Redis, suitable for readiness
// probes and health endpoints.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
