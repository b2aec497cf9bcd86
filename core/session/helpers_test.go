package session_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authshell/core/kv"
	"github.com/dmitrymomot/authshell/core/session"
)

// mockStore implements kv.Store for failure-path tests.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// gatedStore is a memory store whose next Get, once armed, returns what it read
// only after the test releases it.
type gatedStore struct {
	*kv.MemoryStore

	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: kv.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := g.MemoryStore.Get(ctx, key)
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return data, err
}

// gatedAuthenticator blocks every round trip until the test releases it.
type gatedAuthenticator struct {
	started chan session.Provider
	results map[session.Provider]chan error
}

func newGatedAuthenticator(providers ...session.Provider) *gatedAuthenticator {
	g := &gatedAuthenticator{
		started: make(chan session.Provider, len(providers)),
		results: make(map[session.Provider]chan error, len(providers)),
	}
	for _, p := range providers {
		g.results[p] = make(chan error, 1)
	}
	return g
}

func (g *gatedAuthenticator) Authenticate(ctx context.Context, p session.Provider) (session.Identity, error) {
	g.started <- p
	select {
	case err := <-g.results[p]:
		if err != nil {
			return session.Identity{}, err
		}
		return session.Identity{ID: "id-" + string(p), Name: p.Title() + " User", Email: "user@" + p.Domain()}, nil
	case <-ctx.Done():
		return session.Identity{}, ctx.Err()
	}
}

func (g *gatedAuthenticator) release(p session.Provider, err error) {
	g.results[p] <- err
}

func newContainer(t *testing.T, store kv.Store, opts ...session.Option) *session.Container {
	t.Helper()

	c, err := session.New(context.Background(), store, append([]session.Option{session.WithLoginDelay(0)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func loggedIn(t *testing.T, store kv.Store, opts ...session.Option) *session.Container {
	t.Helper()

	c := newContainer(t, store, opts...)
	require.NoError(t, c.Login(context.Background(), session.ProviderGoogle))
	return c
}

func ptr[T any](v T) *T {
	return &v
}
