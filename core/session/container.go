package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/authshell/core/kv"
	"github.com/dmitrymomot/authshell/core/logger"
	"github.com/dmitrymomot/authshell/pkg/async"
	"github.com/dmitrymomot/authshell/pkg/broadcast"
)

// Container is the single source of truth for who is logged in.
//
// State is mutated only through Login, Logout, UpdateProfile and UpdateLocation.
// Every committed change is written to the backing store before the call returns,
// and published to subscribers.
// Safe for concurrent use.
type Container struct {
	mu      sync.Mutex
	state   State
	attempt uint64
	// commits counts local writes; Rehydrate drops reads that raced one.
	commits uint64

	store      kv.Store
	key        string
	auth       Authenticator
	loginDelay time.Duration
	logger     *slog.Logger

	broadcaster     broadcast.Broadcaster[State]
	ownsBroadcaster bool
	bufferSize      int
}

// New creates a container backed by store and rehydrates it from the stored snapshot.
// A missing snapshot yields the unauthenticated state. A snapshot that cannot be decoded
// is logged and removed.
func New(ctx context.Context, store kv.Store, opts ...Option) (*Container, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	def := DefaultConfig()
	c := &Container{
		store:      store,
		key:        def.StorageKey,
		loginDelay: def.LoginDelay,
		bufferSize: def.BroadcastBuffer,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.auth == nil {
		c.auth = NewSimulatedAuthenticator(c.loginDelay)
	}
	if c.broadcaster == nil {
		c.broadcaster = broadcast.NewMemoryBroadcaster[State](c.bufferSize)
		c.ownsBroadcaster = true
	}
	c.logger = c.logger.With(logger.Component("session"), logger.StorageKey(c.key))

	st, err := c.load(ctx)
	switch {
	case err == nil:
		c.state = st
	case errors.Is(err, ErrCorruptSnapshot), errors.Is(err, ErrUnsupportedVersion):
		c.logger.WarnContext(ctx, "discarding unreadable session snapshot", logger.Error(err))
		if derr := store.Delete(ctx, c.key); derr != nil {
			c.logger.WarnContext(ctx, "failed to remove unreadable session snapshot", logger.Error(derr))
		}
		c.state = Unauthenticated()
	default:
		_ = c.Close()
		return nil, err
	}

	c.logger.DebugContext(ctx, "session rehydrated",
		slog.Bool("authenticated", c.state.IsAuthenticated()),
	)
	return c, nil
}

// NewFromConfig is New with a loaded Config applied before opts.
func NewFromConfig(ctx context.Context, cfg Config, store kv.Store, opts ...Option) (*Container, error) {
	return New(ctx, store, append([]Option{WithConfig(cfg)}, opts...)...)
}

// State returns the current state.
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Key returns the backing store key of the snapshot.
func (c *Container) Key() string {
	return c.key
}

// Login authenticates through provider.
//
// Loading is set for the duration of the round trip. On success the identity replaces the
// current one. On failure loading is cleared, the previous identity is kept and the
// authenticator's error is returned as is.
//
// When logins overlap only the most recent one may commit. An older attempt that finishes
// later changes nothing and returns ErrLoginSuperseded, or its own error if it failed.
func (c *Container) Login(ctx context.Context, provider Provider) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	c.mu.Lock()
	c.attempt++
	attempt := c.attempt
	c.state = c.state.withLoading(true)
	c.publishLocked()
	c.mu.Unlock()

	log := c.logger.With(logger.Provider(string(provider)), logger.Attempt(attempt))
	log.DebugContext(ctx, "login started")

	start := time.Now()
	identity, err := c.auth.Authenticate(ctx, provider)

	c.mu.Lock()
	defer c.mu.Unlock()

	if attempt != c.attempt {
		log.InfoContext(ctx, "login result discarded",
			logger.Result("superseded"),
			logger.Elapsed(start),
			logger.Error(err),
		)
		if err != nil {
			return err
		}
		return ErrLoginSuperseded
	}

	if err != nil {
		c.state = c.state.withLoading(false)
		c.publishLocked()
		log.WarnContext(ctx, "login failed",
			logger.Result("failure"),
			logger.Elapsed(start),
			logger.Error(err),
		)
		return err
	}

	c.state = Authenticated(identity)
	c.publishLocked()
	log.InfoContext(ctx, "login completed",
		logger.Result("success"),
		logger.UserID(identity.ID),
		logger.Elapsed(start),
	)

	// The transition is committed; its write must not be dropped because the caller went away.
	return c.persistLocked(context.WithoutCancel(ctx))
}

// LoginAsync runs Login in the background and returns a future for its result.
func (c *Container) LoginAsync(ctx context.Context, provider Provider) *async.ExecFuture {
	return async.Exec(ctx, provider, c.Login)
}

// Logout clears the identity. It does not touch the loading flag and is idempotent.
func (c *Container) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, wasAuthenticated := c.state.User()
	c.state = c.state.withUser(nil)
	c.publishLocked()

	if wasAuthenticated {
		c.logger.InfoContext(ctx, "logged out", logger.UserID(prev.ID))
	}
	return c.persistLocked(ctx)
}

// UpdateProfile shallow-merges patch onto the identity.
// It is a no-op when nobody is logged in.
func (c *Container) UpdateProfile(ctx context.Context, patch IdentityPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.state.User()
	if !ok {
		return nil
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	updated := patch.Apply(current)
	c.state = c.state.withUser(&updated)
	c.publishLocked()

	c.logger.DebugContext(ctx, "profile updated", logger.UserID(updated.ID))
	return c.persistLocked(ctx)
}

// UpdateLocation replaces the identity's location and leaves every other field as is.
// It is a no-op when nobody is logged in.
func (c *Container) UpdateLocation(ctx context.Context, latitude, longitude float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.state.User()
	if !ok {
		return nil
	}
	loc := Location{Latitude: latitude, Longitude: longitude}
	if err := loc.Validate(); err != nil {
		return err
	}

	current.Location = &loc
	c.state = c.state.withUser(&current)
	c.publishLocked()

	c.logger.DebugContext(ctx, "location updated", logger.UserID(current.ID))
	return c.persistLocked(ctx)
}

// Flush writes the current snapshot and returns once the store has accepted it.
func (c *Container) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked(ctx)
}

// Rehydrate replaces the identity with the one in the backing store.
// The loading flag of an in-flight login is preserved. A read that overlapped a
// local commit is discarded, since the commit already overwrote the record.
func (c *Container) Rehydrate(ctx context.Context) error {
	c.mu.Lock()
	commits := c.commits
	c.mu.Unlock()

	st, err := c.load(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if commits != c.commits {
		c.logger.DebugContext(ctx, "stale session reload discarded")
		return nil
	}
	if c.state.sameUser(st) {
		return nil
	}

	c.state = st.withLoading(c.state.loading)
	c.publishLocked()
	c.logger.DebugContext(ctx, "session reloaded from store",
		slog.Bool("authenticated", c.state.IsAuthenticated()),
	)
	return nil
}

// Sync follows writes made to the snapshot by other processes sharing the backing store
// and rehydrates after each one. It blocks until ctx is done.
// Returns kv.ErrWatchUnsupported when the store cannot be watched.
func (c *Container) Sync(ctx context.Context) error {
	w, ok := c.store.(kv.Watcher)
	if !ok {
		return kv.ErrWatchUnsupported
	}

	changes, err := w.Watch(ctx, c.key)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "session sync started")
	for range changes {
		if err := c.Rehydrate(ctx); err != nil {
			c.logger.WarnContext(ctx, "session sync failed", logger.Error(err))
		}
	}
	return nil
}

// Subscribe returns a feed of states published after every change.
// The subscription ends when ctx is done or the subscriber is closed.
func (c *Container) Subscribe(ctx context.Context) broadcast.Subscriber[State] {
	return c.broadcaster.Subscribe(ctx)
}

// Close releases the broadcaster if the container created it.
func (c *Container) Close() error {
	if c.ownsBroadcaster {
		return c.broadcaster.Close()
	}
	return nil
}

func (c *Container) load(ctx context.Context) (State, error) {
	data, err := c.store.Get(ctx, c.key)
	if errors.Is(err, kv.ErrNotFound) {
		return Unauthenticated(), nil
	}
	if err != nil {
		return Unauthenticated(), errors.Join(ErrRehydrate, err)
	}
	return DecodeSnapshot(data)
}

func (c *Container) persistLocked(ctx context.Context) error {
	c.commits++
	data, err := EncodeSnapshot(c.state)
	if err != nil {
		return errors.Join(ErrPersist, err)
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist session", logger.Error(err))
		return errors.Join(ErrPersist, err)
	}
	return nil
}

func (c *Container) publishLocked() {
	// Delivery is non-blocking; a closed broadcaster only means nobody is listening.
	_ = c.broadcaster.Broadcast(context.Background(), broadcast.Message[State]{Data: c.state})
}
