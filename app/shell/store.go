package shell

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/authshell/core/health"
	"github.com/dmitrymomot/authshell/core/kv"
	"github.com/dmitrymomot/authshell/core/logger"
	"github.com/dmitrymomot/authshell/integration/database/mongo"
	"github.com/dmitrymomot/authshell/integration/database/pg"
	"github.com/dmitrymomot/authshell/integration/database/redis"
	"github.com/dmitrymomot/authshell/integration/database/sqlite"
	"github.com/dmitrymomot/authshell/integration/storage/s3"
)

// Supported STORE_DRIVER values.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverPG     = "pg"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// Drivers lists the supported STORE_DRIVER values.
func Drivers() []string {
	return []string{DriverMemory, DriverFile, DriverRedis, DriverPG, DriverMongo, DriverSQLite, DriverS3}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// OpenStore connects the configured driver. The returned check is meant for the
// readiness probe and the closer releases the driver's connections.
func OpenStore(ctx context.Context, cfg StoreConfig, log *slog.Logger) (kv.Store, health.Check, io.Closer, error) {
	if log == nil {
		log = logger.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	log = log.With(logger.Driver(driver))

	switch driver {
	case DriverMemory:
		store := kv.NewMemoryStore()
		return store, nil, store, nil

	case DriverFile:
		store, err := kv.NewFileStore(cfg.FileDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, nopCloser, nil

	case DriverRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		return redis.NewStore(client, cfg.Redis.KeyPrefix), redis.Healthcheck(client), client, nil

	case DriverPG:
		pool, err := pg.Connect(ctx, cfg.PG)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return pg.NewStore(pool), pg.Healthcheck(pool), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil

	case DriverMongo:
		client, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		return mongo.NewStore(coll), mongo.Healthcheck(client), closerFunc(func() error {
			return client.Disconnect(context.WithoutCancel(ctx))
		}), nil

	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewStore(db), sqlite.Healthcheck(db), db, nil

	case DriverS3:
		store, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store.Healthcheck, nopCloser, nil
	}

	return nil, nil, nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownDriver, cfg.Driver, strings.Join(Drivers(), ", "))
}
