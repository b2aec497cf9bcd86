package redis_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authshell/core/kv"
	"github.com/dmitrymomot/authshell/integration/database/redis"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost:6379"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  5 * time.Millisecond,
			ConnectTimeout: 2 * time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

// fakeCmdable serves the three commands the store uses from a map.
type fakeCmdable struct {
	goredis.Cmdable
	data map[string]string
}

func (f *fakeCmdable) Get(_ context.Context, key string) *goredis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *goredis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeCmdable{data: map[string]string{}}
	store := redis.NewStore(fake, "authshell:")

	_, err := store.Get(ctx, "auth-storage")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "auth-storage", []byte(`{"version":0}`)))
	assert.Contains(t, fake.data, "authshell:auth-storage")

	got, err := store.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.Equal(t, `{"version":0}`, string(got))

	require.NoError(t, store.Delete(ctx, "auth-storage"))
	_, err = store.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	assert.ErrorIs(t, store.Set(ctx, "", nil), kv.ErrEmptyKey)
}
