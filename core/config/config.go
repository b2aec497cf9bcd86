package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the target.
	ErrParsingConfig = errors.New("failed to parse config from environment")
	// ErrNilTarget is returned when Load is called with a nil pointer.
	ErrNilTarget = errors.New("config target must be a non-nil pointer")
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (value of T)
	cacheMu    sync.Mutex
)

// loadDotenv reads .env from the working directory once. A missing file is fine.
func loadDotenv() {
	dotenvOnce.Do(func() {
		// A missing .env is the normal case in containers; process env still applies.
		_ = godotenv.Load()
	})
}

// Load parses environment variables into cfg. The result is cached per type,
// so later calls for the same type return the first loaded value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilTarget
	}

	loadDotenv()

	typ := reflect.TypeFor[T]()
	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if v, ok := cache.Load(typ); ok {
		*cfg = v.(T)
		return nil
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return errors.Join(ErrParsingConfig, fmt.Errorf("%s: %w", typ, err))
	}

	cache.Store(typ, loaded)
	*cfg = loaded
	return nil
}

// MustLoad is like Load but panics on failure. Intended for startup code.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset drops every cached configuration. Tests use it to reload after changing the environment.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}
