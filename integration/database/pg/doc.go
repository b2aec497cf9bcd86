// Package pg provides PostgreSQL connectivity, schema migration and a kv.Store driver
// backed by the kv_entries table.
//
// # Key Features
//
//   - Connect: creates a pgx connection pool with exponential retry and ping verification
//   - Migrate: applies the embedded goose migrations through pgx's database/sql adapter
//   - Healthcheck: returns a check function for readiness probes
//   - Store: kv.Store using an upsert on kv_entries
//   - WithTx / TxFromContext: run store statements inside a caller-owned transaction
//
// # Configuration
//
//	type Config struct {
//		ConnectionString  string        `env:"PG_CONN_URL"`
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
// # Usage Example
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("Failed to connect to PostgreSQL:", err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//		log.Fatal("Migration failed:", err)
//	}
//
//	sessions, err := session.New(ctx, pg.NewStore(pool))
//
// # Transactions
//
// A store call made with a context from WithTx joins that transaction:
//
//	tx, err := pool.Begin(ctx)
//	...
//	err = store.Set(pg.WithTx(ctx, tx), key, value)
//
// # Error Handling
//
//	ErrFailedToOpenDBConnection, ErrEmptyConnectionString, ErrHealthcheckFailed,
//	ErrFailedToParseDBConfig, ErrFailedToApplyMigrations
//
// IsNotFoundError and IsTxClosedError classify pgx errors. Store maps pgx.ErrNoRows
// to kv.ErrNotFound.
package pg
