package sqlite

import "time"

// Config holds SQLite settings.
type Config struct {
	Path            string        `env:"SQLITE_PATH" envDefault:"authshell.db"`
	BusyTimeout     time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
	MaxOpenConns    int           `env:"SQLITE_MAX_OPEN_CONNS" envDefault:"1"`
	MigrationsTable string        `env:"SQLITE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
