// Package redis provides Redis client initialization and health checking.
//
// Connect validates the connection URL, dials with exponential backoff
// retries, and verifies connectivity with a ping before returning the
// client. Both redis:// and rediss:// (TLS) URL schemes are supported.
//
// Configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//	}
//
// Usage:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("failed to connect to redis:", err)
//	}
//	defer client.Close()
//
// Healthcheck returns a ping-based check function suitable for readiness
// probes and HTTP health endpoints:
//
//	check := redis.Healthcheck(client)
//	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
//		if err := check(r.Context()); err != nil {
//			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
//			return
//		}
//		w.WriteHeader(http.StatusOK)
//	})
//
// Errors returned by this package wrap the underlying go-redis errors
// while providing stable sentinel types for errors.Is checks:
// ErrFailedToParseRedisConnString, ErrRedisNotReady, ErrEmptyConnectionURL
// and ErrHealthcheckFailed.
package redis
