package ratelimiter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authshell/core/logger"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time // used by cleanup to find stale buckets
}

// MemoryStore keeps one token bucket per key in memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  Config
	now     func() time.Time

	cleanupInterval time.Duration
	logger          *slog.Logger
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale buckets are removed by Run.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

func WithMemoryStoreLogger(l *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if l != nil {
			ms.logger = l
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates a store that applies cfg to every key.
func NewMemoryStore(cfg Config, opts ...MemoryStoreOption) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ms := &MemoryStore{
		buckets:         make(map[string]*bucket),
		config:          cfg,
		now:             time.Now,
		cleanupInterval: 5 * time.Minute,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms, nil
}

// Allow consumes one token for key.
func (ms *MemoryStore) Allow(ctx context.Context, key string) (Result, error) {
	return ms.Consume(ctx, key, 1)
}

// Consume takes tokens from the bucket for key. A refused request leaves the
// bucket untouched.
func (ms *MemoryStore) Consume(ctx context.Context, key string, tokens int) (Result, error) {
	if tokens <= 0 {
		return Result{}, ErrInvalidTokenCount
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	cfg := ms.config
	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
	}

	// Cap intervals to avoid overflow after long idle periods.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}
	b.lastAccess = now

	res := Result{ResetAt: b.lastRefill.Add(cfg.RefillInterval)}
	if b.tokens < tokens {
		res.Remaining = b.tokens
		return res, nil
	}
	b.tokens -= tokens
	res.Allowed = true
	res.Remaining = b.tokens
	return res, nil
}

// Reset forgets the bucket for key.
func (ms *MemoryStore) Reset(key string) {
	ms.mu.Lock()
	delete(ms.buckets, key)
	ms.mu.Unlock()
}

// Len returns the number of tracked keys.
func (ms *MemoryStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.buckets)
}

// Run returns an errgroup-compatible function that removes stale buckets
// every cleanup interval until ctx is canceled.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		if ms.cleanupInterval <= 0 {
			<-ctx.Done()
			return nil
		}

		ticker := time.NewTicker(ms.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return nil
				}
				return ctx.Err()
			case <-ticker.C:
				if n := ms.RemoveStale(); n > 0 {
					ms.logger.DebugContext(ctx, "removed stale rate limit buckets",
						logger.Component("ratelimiter"),
						slog.Int("count", n),
					)
				}
			}
		}
	}
}

// RemoveStale drops buckets that have refilled completely and were not used
// since, and returns how many were removed.
func (ms *MemoryStore) RemoveStale() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	cfg := ms.config
	fullAfter := time.Duration(cfg.Capacity/cfg.RefillRate+1) * cfg.RefillInterval
	now := ms.now()

	removed := 0
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) >= fullAfter {
			delete(ms.buckets, key)
			removed++
		}
	}
	return removed
}
