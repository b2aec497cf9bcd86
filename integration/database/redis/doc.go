// Package redis provides Redis client initialization, health checking and a kv.Store
// driver so session snapshots can live in Redis.
//
// # Key Features
//
//   - Connect: creates a client with exponential retry and ping verification
//   - Healthcheck: returns a check function for readiness probes
//   - Store: kv.Store over plain Redis strings under a key prefix
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"authshell:"`
//	}
//
// Both redis:// and rediss:// (TLS) URLs are accepted.
//
// # Usage Example
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal("Failed to connect to Redis:", err)
//	}
//	defer client.Close()
//
//	store := redis.NewStore(client, cfg.KeyPrefix)
//	sessions, err := session.New(ctx, store)
//
//	readiness := health.Readiness(log, redis.Healthcheck(client))
//
// # Error Handling
//
//   - ErrFailedToParseRedisConnString: the connection URL is malformed
//   - ErrRedisNotReady: Redis did not answer within the retry budget
//   - ErrEmptyConnectionURL: no connection URL was provided
//   - ErrHealthcheckFailed: the health check ping failed
//
// Store maps redis.Nil to kv.ErrNotFound; other client errors are returned as is.
package redis
