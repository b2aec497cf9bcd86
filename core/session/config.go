package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/authshell/pkg/broadcast"
)

// Config holds container configuration loaded from the environment.
type Config struct {
	StorageKey      string        `env:"SESSION_STORAGE_KEY" envDefault:"auth-storage"`
	LoginDelay      time.Duration `env:"SESSION_LOGIN_DELAY" envDefault:"1s"`
	BroadcastBuffer int           `env:"SESSION_BROADCAST_BUFFER" envDefault:"16"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		StorageKey:      DefaultStorageKey,
		LoginDelay:      time.Second,
		BroadcastBuffer: 16,
	}
}

// Option configures a Container.
type Option func(*Container)

// WithConfig applies a loaded Config. Zero fields keep their defaults,
// so a zero LoginDelay keeps the default delay; use WithLoginDelay(0) to disable it.
func WithConfig(cfg Config) Option {
	return func(c *Container) {
		if cfg.StorageKey != "" {
			c.key = cfg.StorageKey
		}
		if cfg.LoginDelay > 0 {
			c.loginDelay = cfg.LoginDelay
		}
		if cfg.BroadcastBuffer > 0 {
			c.bufferSize = cfg.BroadcastBuffer
		}
	}
}

// WithStorageKey sets the key the snapshot is stored under.
func WithStorageKey(key string) Option {
	return func(c *Container) {
		if key != "" {
			c.key = key
		}
	}
}

// WithLoginDelay sets the delay of the default simulated authenticator.
// It has no effect when WithAuthenticator is used.
func WithLoginDelay(d time.Duration) Option {
	return func(c *Container) {
		c.loginDelay = d
	}
}

// WithAuthenticator replaces the simulated identity-provider round trip.
func WithAuthenticator(a Authenticator) Option {
	return func(c *Container) {
		c.auth = a
	}
}

// WithLogger sets the logger. The container is silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBroadcaster sets the broadcaster state changes are published on.
// A supplied broadcaster is not closed by Container.Close.
func WithBroadcaster(b broadcast.Broadcaster[State]) Option {
	return func(c *Container) {
		c.broadcaster = b
	}
}
