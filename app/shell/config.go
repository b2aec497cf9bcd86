package shell

import (
	"github.com/dmitrymomot/authshell/core/server"
	"github.com/dmitrymomot/authshell/core/session"
	"github.com/dmitrymomot/authshell/integration/database/mongo"
	"github.com/dmitrymomot/authshell/integration/database/pg"
	"github.com/dmitrymomot/authshell/integration/database/redis"
	"github.com/dmitrymomot/authshell/integration/database/sqlite"
	"github.com/dmitrymomot/authshell/integration/storage/s3"
	"github.com/dmitrymomot/authshell/pkg/ratelimiter"
)

type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"authshell"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// SessionSync rehydrates the container when another process rewrites the
	// snapshot. Only stores that can be watched (file) support it.
	SessionSync bool `env:"SESSION_SYNC" envDefault:"false"`

	Server  server.Config
	Session session.Config
	Store   StoreConfig

	// LoginRateLimit throttles POST /session/login per client IP.
	// Zero capacity disables it.
	LoginRateLimit ratelimiter.Config `envPrefix:"LOGIN_"`
}

// StoreConfig selects and configures the backing store driver.
type StoreConfig struct {
	Driver  string `env:"STORE_DRIVER" envDefault:"file"`
	FileDir string `env:"STORE_FILE_DIR" envDefault:".authshell"`

	Redis  redis.Config
	PG     pg.Config
	Mongo  mongo.Config
	SQLite sqlite.Config
	S3     s3.Config
}
