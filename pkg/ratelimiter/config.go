package ratelimiter

import (
	"fmt"
	"time"
)

// Config describes a token bucket: it holds at most Capacity tokens and gains
// RefillRate tokens every RefillInterval.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`
}

// Validate reports a non-positive field.
func (c Config) Validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return fmt.Errorf("%w: capacity=%d refill_rate=%d refill_interval=%s",
			ErrInvalidConfig, c.Capacity, c.RefillRate, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long until the next refill, never negative.
func (r Result) RetryAfter() time.Duration {
	return max(time.Until(r.ResetAt), 0)
}
