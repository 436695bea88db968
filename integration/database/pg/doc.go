// Package pg provides PostgreSQL connection management with migrations and
// health checking.
//
// Connect wraps the pgx driver with retry logic, connection pool tuning,
// and a verification ping. Migrate applies embedded goose migrations
// through the pgx stdlib adapter. Healthcheck returns a ping function
// suitable for readiness probes.
//
// Configuration is handled through the Config struct with environment
// variable mapping:
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL,required"`
//		MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//		MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
//		HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
//		MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
//		MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`
//		RetryAttempts     int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval     time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`
//		MigrationsTable   string        `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
//	}
//
// Usage:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("failed to connect to postgres:", err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, logger); err != nil {
//		log.Fatal("migration failed:", err)
//	}
//
// # Error classification
//
// The package provides helpers for common PostgreSQL error patterns so
// repositories can translate driver errors into domain errors:
//
//	pg.IsNotFoundError(err)            // pgx.ErrNoRows
//	pg.IsDuplicateKeyError(err)        // unique constraint violation
//	pg.IsForeignKeyViolationError(err) // referential integrity violation
//	pg.IsTxClosedError(err)            // closed transaction usage
//
// # Transactions
//
// WithTx and TxFromContext propagate a pgx.Tx through context so
// repositories can participate in a caller-managed transaction:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx) // safe after commit
//
//	ctx = pg.WithTx(ctx, tx)
//	if err := repo.Create(ctx, item); err != nil {
//		return err
//	}
//	return tx.Commit(ctx)
//
// A repository checks the context before falling back to the pool:
//
//	if tx, ok := pg.TxFromContext(ctx); ok {
//		_, err := tx.Exec(ctx, q, args...)
//		return err
//	}
//	_, err := s.pool.Exec(ctx, q, args...)
//	return err
package pg
