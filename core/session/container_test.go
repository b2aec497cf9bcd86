package session_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authshell/core/kv"
	"github.com/dmitrymomot/authshell/core/session"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("starts unauthenticated on empty store", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore())
		st := c.State()

		assert.Equal(t, session.StatusUnauthenticated, st.Status())
		assert.False(t, st.IsAuthenticated())
		assert.False(t, st.Loading())
		_, ok := st.User()
		assert.False(t, ok)
	})

	t.Run("rejects nil store", func(t *testing.T) {
		t.Parallel()

		_, err := session.New(context.Background(), nil)
		assert.ErrorIs(t, err, session.ErrNilStore)
	})

	t.Run("discards corrupt snapshot", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, session.DefaultStorageKey, []byte("{not json")))

		c := newContainer(t, store)
		assert.False(t, c.State().IsAuthenticated())

		_, err := store.Get(ctx, session.DefaultStorageKey)
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("fails when the store cannot be read", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("Get", mock.Anything, session.DefaultStorageKey).Return(nil, errors.New("connection refused"))

		_, err := session.New(context.Background(), store)
		require.Error(t, err)
		assert.ErrorIs(t, err, session.ErrRehydrate)
		store.AssertExpectations(t)
	})

	t.Run("uses configured storage key", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		c := newContainer(t, store, session.WithStorageKey("custom-key"))
		require.NoError(t, c.Login(ctx, session.ProviderApple))

		assert.Equal(t, "custom-key", c.Key())
		_, err := store.Get(ctx, "custom-key")
		require.NoError(t, err)
		_, err = store.Get(ctx, session.DefaultStorageKey)
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})
}

func TestContainer_Login(t *testing.T) {
	t.Parallel()

	for _, p := range session.Providers() {
		t.Run(string(p), func(t *testing.T) {
			t.Parallel()

			c := newContainer(t, kv.NewMemoryStore())
			require.NoError(t, c.Login(context.Background(), p))

			st := c.State()
			assert.True(t, st.IsAuthenticated())
			assert.False(t, st.Loading())
			assert.Equal(t, session.StatusAuthenticated, st.Status())

			user, ok := st.User()
			require.True(t, ok)
			assert.True(t, strings.HasSuffix(user.Email, "@"+p.Domain()), user.Email)
			assert.Equal(t, p.Title()+" User", user.Name)
			assert.NotEmpty(t, user.ID)
			assert.NotEmpty(t, user.Avatar)
		})
	}

	t.Run("google scenario", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore())
		require.False(t, c.State().IsAuthenticated())

		require.NoError(t, c.Login(context.Background(), "google"))

		user, ok := c.State().User()
		require.True(t, ok)
		assert.Equal(t, "user@google.com", user.Email)
		assert.True(t, c.State().IsAuthenticated())
	})

	t.Run("unknown provider changes nothing", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore())
		err := c.Login(context.Background(), "myspace")

		assert.ErrorIs(t, err, session.ErrUnknownProvider)
		assert.True(t, c.State().Equal(session.Unauthenticated()))
	})

	t.Run("persists the new identity", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		c := loggedIn(t, store)

		data, err := store.Get(ctx, session.DefaultStorageKey)
		require.NoError(t, err)

		restored, err := session.DecodeSnapshot(data)
		require.NoError(t, err)
		assert.True(t, restored.Equal(c.State()))
	})
}

func TestContainer_LoginFailure(t *testing.T) {
	t.Parallel()

	errRoundTrip := errors.New("oauth round trip failed")
	failing := session.AuthenticatorFunc(func(context.Context, session.Provider) (session.Identity, error) {
		return session.Identity{}, errRoundTrip
	})

	t.Run("from unauthenticated", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore(), session.WithAuthenticator(failing))
		before := c.State()

		err := c.Login(context.Background(), session.ProviderGoogle)
		require.Error(t, err)
		assert.Same(t, errRoundTrip, err, "error must be surfaced unmodified")

		after := c.State()
		assert.False(t, after.Loading())
		assert.True(t, before.Equal(after))
	})

	t.Run("from authenticated keeps previous identity", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		c := loggedIn(t, store)
		before := c.State()

		other, err := session.New(ctx, store, session.WithAuthenticator(failing))
		require.NoError(t, err)
		t.Cleanup(func() { _ = other.Close() })
		require.True(t, other.State().Equal(before))

		err = other.Login(ctx, session.ProviderFacebook)
		assert.ErrorIs(t, err, errRoundTrip)

		after := other.State()
		assert.False(t, after.Loading())
		assert.True(t, after.IsAuthenticated())
		assert.True(t, before.Equal(after))
	})

	t.Run("cancelled context aborts the round trip", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore(), session.WithLoginDelay(time.Hour))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := c.Login(ctx, session.ProviderGoogle)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, c.State().Loading())
		assert.False(t, c.State().IsAuthenticated())
	})
}

func TestContainer_LoginSupersede(t *testing.T) {
	t.Parallel()

	t.Run("newer attempt wins when older finishes last", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		auth := newGatedAuthenticator(session.ProviderGoogle, session.ProviderApple)
		c := newContainer(t, kv.NewMemoryStore(), session.WithAuthenticator(auth))

		first := c.LoginAsync(ctx, session.ProviderGoogle)
		require.Equal(t, session.ProviderGoogle, <-auth.started)
		second := c.LoginAsync(ctx, session.ProviderApple)
		require.Equal(t, session.ProviderApple, <-auth.started)

		auth.release(session.ProviderApple, nil)
		require.NoError(t, second.Await())

		user, ok := c.State().User()
		require.True(t, ok)
		assert.Equal(t, "user@apple.com", user.Email)
		assert.False(t, c.State().Loading())

		auth.release(session.ProviderGoogle, nil)
		assert.ErrorIs(t, first.Await(), session.ErrLoginSuperseded)

		user, _ = c.State().User()
		assert.Equal(t, "user@apple.com", user.Email)
	})

	t.Run("stale completion does not clear loading", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		auth := newGatedAuthenticator(session.ProviderGoogle, session.ProviderFacebook)
		c := newContainer(t, kv.NewMemoryStore(), session.WithAuthenticator(auth))

		first := c.LoginAsync(ctx, session.ProviderGoogle)
		<-auth.started
		second := c.LoginAsync(ctx, session.ProviderFacebook)
		<-auth.started

		errStale := errors.New("stale failure")
		auth.release(session.ProviderGoogle, errStale)
		assert.ErrorIs(t, first.Await(), errStale)
		assert.True(t, c.State().Loading(), "newer attempt still pending")
		assert.Equal(t, session.StatusAuthenticating, c.State().Status())

		auth.release(session.ProviderFacebook, nil)
		require.NoError(t, second.Await())
		assert.Equal(t, session.StatusAuthenticated, c.State().Status())
	})
}

func TestContainer_Logout(t *testing.T) {
	t.Parallel()

	t.Run("clears identity and persists", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		c := loggedIn(t, store)

		require.NoError(t, c.Logout(ctx))
		assert.False(t, c.State().IsAuthenticated())

		data, err := store.Get(ctx, session.DefaultStorageKey)
		require.NoError(t, err)
		assert.JSONEq(t, `{"state":{"user":null,"isAuthenticated":false},"version":0}`, string(data))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := newContainer(t, kv.NewMemoryStore())

		require.NoError(t, c.Logout(ctx))
		require.NoError(t, c.Logout(ctx))

		st := c.State()
		assert.False(t, st.IsAuthenticated())
		_, ok := st.User()
		assert.False(t, ok)
	})

	t.Run("does not touch loading", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		auth := newGatedAuthenticator(session.ProviderGoogle)
		c := newContainer(t, kv.NewMemoryStore(), session.WithAuthenticator(auth))

		pending := c.LoginAsync(ctx, session.ProviderGoogle)
		<-auth.started

		require.NoError(t, c.Logout(ctx))
		assert.True(t, c.State().Loading())

		auth.release(session.ProviderGoogle, nil)
		require.NoError(t, pending.Await())
		assert.True(t, c.State().IsAuthenticated())
	})
}

func TestContainer_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("no-op when unauthenticated", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		c := newContainer(t, store)

		require.NoError(t, c.UpdateProfile(ctx, session.IdentityPatch{Name: ptr("X")}))
		assert.True(t, c.State().Equal(session.Unauthenticated()))

		_, err := store.Get(ctx, session.DefaultStorageKey)
		assert.ErrorIs(t, err, kv.ErrNotFound, "no-op must not write")
	})

	t.Run("invalid values ignored when unauthenticated", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		c := newContainer(t, store)

		require.NoError(t, c.UpdateProfile(ctx, session.IdentityPatch{Gender: ptr(session.Gender("robot"))}))
		assert.True(t, c.State().Equal(session.Unauthenticated()))

		_, err := store.Get(ctx, session.DefaultStorageKey)
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("changes only supplied fields", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := loggedIn(t, kv.NewMemoryStore())
		before, _ := c.State().User()

		require.NoError(t, c.UpdateProfile(ctx, session.IdentityPatch{Name: ptr("X")}))

		after, _ := c.State().User()
		want := before
		want.Name = "X"
		if diff := cmp.Diff(want, after); diff != "" {
			t.Errorf("identity mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := loggedIn(t, kv.NewMemoryStore())
		before := c.State()

		err := c.UpdateProfile(ctx, session.IdentityPatch{Gender: ptr(session.Gender("robot"))})
		assert.ErrorIs(t, err, session.ErrInvalidProfile)
		assert.True(t, before.Equal(c.State()))
	})
}

func TestContainer_UpdateLocation(t *testing.T) {
	t.Parallel()

	t.Run("no-op when unauthenticated", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore())
		require.NoError(t, c.UpdateLocation(context.Background(), 52.52, 13.405))
		assert.False(t, c.State().IsAuthenticated())
	})

	t.Run("out of range coordinates ignored when unauthenticated", func(t *testing.T) {
		t.Parallel()

		c := newContainer(t, kv.NewMemoryStore())
		require.NoError(t, c.UpdateLocation(context.Background(), 91, 181))
		assert.False(t, c.State().IsAuthenticated())
	})

	t.Run("retained by later profile merge", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := loggedIn(t, kv.NewMemoryStore())

		require.NoError(t, c.UpdateLocation(ctx, 52.52, 13.405))
		require.NoError(t, c.UpdateProfile(ctx, session.IdentityPatch{Name: ptr("Y")}))

		user, ok := c.State().User()
		require.True(t, ok)
		assert.Equal(t, "Y", user.Name)
		require.NotNil(t, user.Location)
		assert.Equal(t, session.Location{Latitude: 52.52, Longitude: 13.405}, *user.Location)
	})

	t.Run("only the location changes", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := loggedIn(t, kv.NewMemoryStore())
		require.NoError(t, c.UpdateProfile(ctx, session.IdentityPatch{Phone: ptr("+100"), Birthday: ptr("1990-04-01")}))
		before, _ := c.State().User()

		require.NoError(t, c.UpdateLocation(ctx, -33.86, 151.2))

		after, _ := c.State().User()
		want := before
		want.Location = &session.Location{Latitude: -33.86, Longitude: 151.2}
		if diff := cmp.Diff(want, after); diff != "" {
			t.Errorf("identity mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects out of range coordinates", func(t *testing.T) {
		t.Parallel()

		c := loggedIn(t, kv.NewMemoryStore())
		err := c.UpdateLocation(context.Background(), 91, 0)
		assert.ErrorIs(t, err, session.ErrInvalidLocation)
	})
}

func TestContainer_RoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("rehydrated container equals the original", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()

		original := loggedIn(t, store)
		require.NoError(t, original.UpdateLocation(ctx, 10, 20))
		want := original.State()
		require.NoError(t, original.Close())

		restored := newContainer(t, store)
		got := restored.State()

		assert.Equal(t, want.IsAuthenticated(), got.IsAuthenticated())
		assert.False(t, got.Loading())
		wantUser, _ := want.User()
		gotUser, _ := got.User()
		if diff := cmp.Diff(wantUser, gotUser); diff != "" {
			t.Errorf("identity mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("loading is not restored", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := kv.NewMemoryStore()
		seed := loggedIn(t, store)
		settled := seed.State()

		auth := newGatedAuthenticator(session.ProviderApple)
		original := newContainer(t, store, session.WithAuthenticator(auth))
		pending := original.LoginAsync(ctx, session.ProviderApple)
		<-auth.started
		require.True(t, original.State().Loading())
		require.NoError(t, original.Flush(ctx))

		restored := newContainer(t, store)
		assert.False(t, restored.State().Loading())
		assert.True(t, restored.State().Equal(settled))

		auth.release(session.ProviderApple, nil)
		require.NoError(t, pending.Await())
	})
}

func TestContainer_PersistFailure(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk full")
	ctx := context.Background()

	store := &mockStore{}
	store.On("Get", mock.Anything, session.DefaultStorageKey).Return(nil, kv.ErrNotFound)
	store.On("Set", mock.Anything, session.DefaultStorageKey, mock.Anything).Return(errDisk)

	c := newContainer(t, store)

	err := c.Login(ctx, session.ProviderGoogle)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrPersist)
	assert.ErrorIs(t, err, errDisk)
	assert.True(t, c.State().IsAuthenticated(), "memory state is updated even if the write fails")

	err = c.Logout(ctx)
	assert.ErrorIs(t, err, session.ErrPersist)
	assert.False(t, c.State().IsAuthenticated())

	assert.ErrorIs(t, c.Flush(ctx), session.ErrPersist)
	store.AssertNumberOfCalls(t, "Set", 3)
}

func TestContainer_Subscribe(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newContainer(t, kv.NewMemoryStore())
	sub := c.Subscribe(ctx)
	defer sub.Close()

	require.NoError(t, c.Login(ctx, session.ProviderGoogle))
	require.NoError(t, c.Logout(ctx))

	var got []session.Status
	for len(got) < 3 {
		select {
		case msg := <-sub.Receive(ctx):
			got = append(got, msg.Data.Status())
		case <-time.After(time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}

	assert.Equal(t, []session.Status{
		session.StatusAuthenticating,
		session.StatusAuthenticated,
		session.StatusUnauthenticated,
	}, got)
}

func TestContainer_Sync(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	storeA, err := kv.NewFileStore(dir)
	require.NoError(t, err)
	storeB, err := kv.NewFileStore(dir)
	require.NoError(t, err)

	a := newContainer(t, storeA)
	b := newContainer(t, storeB)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Sync(ctx) }()

	require.NoError(t, a.Login(ctx, session.ProviderFacebook))

	assert.Eventually(t, func() bool {
		_ = a.Flush(ctx)
		return b.State().IsAuthenticated()
	}, 5*time.Second, 50*time.Millisecond)

	userA, _ := a.State().User()
	userB, _ := b.State().User()
	assert.Equal(t, userA.ID, userB.ID)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sync did not stop")
	}
}

func TestContainer_SyncUnsupported(t *testing.T) {
	t.Parallel()

	c := newContainer(t, kv.NewMemoryStore())
	assert.ErrorIs(t, c.Sync(context.Background()), kv.ErrWatchUnsupported)
}

func TestContainer_Rehydrate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := kv.NewMemoryStore()
	a := newContainer(t, store)
	b := newContainer(t, store)

	require.NoError(t, b.Login(ctx, session.ProviderGoogle))
	require.False(t, a.State().IsAuthenticated())

	require.NoError(t, a.Rehydrate(ctx))
	assert.True(t, a.State().Equal(b.State()))

	require.NoError(t, store.Set(ctx, session.DefaultStorageKey, []byte(`{"state":{},"version":7}`)))
	assert.ErrorIs(t, a.Rehydrate(ctx), session.ErrUnsupportedVersion)
	assert.True(t, a.State().IsAuthenticated(), "failed rehydrate keeps current state")
}

func TestContainer_RehydrateDiscardsStaleRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newGatedStore()
	c := loggedIn(t, store)

	store.armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- c.Rehydrate(ctx) }()

	<-store.entered
	require.NoError(t, c.UpdateProfile(ctx, session.IdentityPatch{Name: ptr("Newer")}))
	close(store.release)
	require.NoError(t, <-done)

	user, ok := c.State().User()
	require.True(t, ok)
	assert.Equal(t, "Newer", user.Name, "reload that raced a commit must not roll it back")

	data, err := store.Get(ctx, session.DefaultStorageKey)
	require.NoError(t, err)
	persisted, err := session.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.True(t, persisted.Equal(c.State()), "memory and store must agree")

	require.NoError(t, c.Rehydrate(ctx))
	user, _ = c.State().User()
	assert.Equal(t, "Newer", user.Name)
}

func TestWithConfig_ZeroValueKeepsDefaults(t *testing.T) {
	t.Parallel()

	c, err := session.New(context.Background(), kv.NewMemoryStore(), session.WithConfig(session.Config{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, session.DefaultStorageKey, c.Key())

	// The default one second delay is still in effect.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c.Login(ctx, session.ProviderGoogle)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.State().IsAuthenticated())
	assert.False(t, c.State().Loading())
}
