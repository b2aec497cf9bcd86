package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authshell/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newStore(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.MemoryStore, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store, err := ratelimiter.NewMemoryStore(cfg, ratelimiter.WithClock(clk.Now))
	require.NoError(t, err)
	return store, clk
}

func TestNewMemoryStore_InvalidConfig(t *testing.T) {
	t.Parallel()

	for _, cfg := range []ratelimiter.Config{
		{},
		{Capacity: 1, RefillRate: 1},
		{Capacity: 1, RefillInterval: time.Second},
		{RefillRate: 1, RefillInterval: time.Second},
	} {
		_, err := ratelimiter.NewMemoryStore(cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestMemoryStore_Allow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clk := newStore(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})

	for want := 2; want >= 0; want-- {
		res, err := store.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, want, res.Remaining)
	}

	res, err := store.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	other, err := store.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys have separate buckets")

	clk.Advance(time.Second)
	res, err = store.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestMemoryStore_RefillIsCapped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clk := newStore(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second})

	_, _ = store.Allow(ctx, "k")
	_, _ = store.Allow(ctx, "k")
	clk.Advance(time.Hour)

	res, err := store.Allow(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryStore_Consume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newStore(t, ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Second})

	_, err := store.Consume(ctx, "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	res, err := store.Consume(ctx, "k", 6)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 5, res.Remaining, "refused request must not drain the bucket")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Consume(cancelled, "k", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_RemoveStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, clk := newStore(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second})

	_, _ = store.Allow(ctx, "a")
	_, _ = store.Allow(ctx, "b")
	require.Equal(t, 2, store.Len())

	clk.Advance(time.Second)
	assert.Zero(t, store.RemoveStale())

	clk.Advance(5 * time.Second)
	_, _ = store.Allow(ctx, "b")
	assert.Equal(t, 1, store.RemoveStale())
	assert.Equal(t, 1, store.Len())

	store.Reset("b")
	assert.Zero(t, store.Len())
}

func TestMemoryStore_Run(t *testing.T) {
	t.Parallel()

	store, err := ratelimiter.NewMemoryStore(
		ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Millisecond},
		ratelimiter.WithCleanupInterval(5*time.Millisecond),
	)
	require.NoError(t, err)

	_, _ = store.Allow(context.Background(), "k")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Run(ctx)() }()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t, ratelimiter.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.Allow(context.Background(), "shared")
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
