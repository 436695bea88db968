// Package ratelimiter provides sliding-window rate limiting keyed by
// client and route identity.
//
// A sliding window counts requests within the trailing interval rather
// than fixed buckets, so a burst straddling a bucket boundary cannot
// double its budget. Each check atomically prunes expired entries,
// records the current request, and counts what remains; the count
// decides whether the request is allowed.
//
// Two implementations are provided: RedisLimiter shares its windows
// across instances through Redis sorted sets, MemoryLimiter keeps them
// in process memory for single-node deployments and tests.
//
// Limiter errors signal backend trouble, not client misbehavior. The
// request pipeline treats them as allow-and-log (fail open): correctness
// of business traffic is never held hostage by limiter availability.
package ratelimiter
