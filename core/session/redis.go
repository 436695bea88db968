package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamgrid/gateway/pkg/storekey"
)

const (
	// keyPrefix namespaces session records in the shared store.
	keyPrefix = "session"

	// DefaultTTL is the session idle timeout; every successful read
	// extends it.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultScanBatchSize bounds each SCAN iteration in DestroyAll.
	DefaultScanBatchSize = 100

	// DefaultOpTimeout bounds each store round-trip. The HTTP/WS
	// pipelines do not impose deadlines of their own, so the bound
	// lives here.
	DefaultOpTimeout = 5 * time.Second
)

// RedisStore persists session records in Redis under
// "session:<userID>:<sessionID>" with a TTL equal to the session idle
// timeout. Both identifier parts pass the storekey allow-list before any
// key is built.
type RedisStore struct {
	client    redis.UniversalClient
	ttl       time.Duration
	scanBatch int64
	opTimeout time.Duration
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithTTL overrides the session idle timeout.
func WithTTL(ttl time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithScanBatchSize overrides the SCAN batch size used by DestroyAll.
func WithScanBatchSize(n int64) RedisStoreOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.scanBatch = n
		}
	}
}

// WithOpTimeout overrides the per-operation deadline applied to every
// store round-trip. Zero disables the bound.
func WithOpTimeout(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		s.opTimeout = d
	}
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	s := &RedisStore{
		client:    client,
		ttl:       DefaultTTL,
		scanBatch: DefaultScanBatchSize,
		opTimeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save writes the record with a fresh TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	key, err := s.key(sess.UserID, sess.ID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrSaveSession, err)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	return nil
}

// Get fetches a record and refreshes its TTL.
func (s *RedisStore) Get(ctx context.Context, userID, sessionID string) (*Session, error) {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session record %s: %w", key, err)
	}

	// Sliding expiration: any successful read keeps the session alive.
	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return &sess, nil
}

// Update merges patch into the record's data map and persists it.
func (s *RedisStore) Update(ctx context.Context, userID, sessionID string, patch map[string]any) (*Session, error) {
	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Data == nil {
		sess.Data = make(map[string]any, len(patch))
	}
	maps.Copy(sess.Data, patch)
	sess.UpdatedAt = time.Now()

	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Replace swaps the record's data map wholesale and persists it.
func (s *RedisStore) Replace(ctx context.Context, userID, sessionID string, data map[string]any) (*Session, error) {
	sess, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	sess.Data = maps.Clone(data)
	sess.UpdatedAt = time.Now()

	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Destroy removes a single record.
func (s *RedisStore) Destroy(ctx context.Context, userID, sessionID string) error {
	key, err := s.key(userID, sessionID)
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return errors.Join(ErrDeleteSession, err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// DestroyAll removes every session in the user's namespace using an
// incremental cursor scan with bounded deletion batches. A blocking
// full-keyspace sweep would stall every other tenant of the shared store.
func (s *RedisStore) DestroyAll(ctx context.Context, userID string) (int, error) {
	uid, err := storekey.Sanitize(userID)
	if err != nil {
		return 0, errors.Join(ErrInvalidKey, err)
	}
	pattern := keyPrefix + ":" + uid + ":*"

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, s.scanBatch).Result()
		if err != nil {
			return removed, errors.Join(ErrDeleteSession, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, errors.Join(ErrDeleteSession, err)
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

func (s *RedisStore) key(userID, sessionID string) (string, error) {
	key, err := storekey.Join(keyPrefix, userID, sessionID)
	if err != nil {
		return "", errors.Join(ErrInvalidKey, err)
	}
	return key, nil
}

func (s *RedisStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
