package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/authshell/core/config"
	"github.com/dmitrymomot/authshell/core/health"
	"github.com/dmitrymomot/authshell/core/kv"
	"github.com/dmitrymomot/authshell/core/logger"
	"github.com/dmitrymomot/authshell/core/server"
	"github.com/dmitrymomot/authshell/core/session"
	"github.com/dmitrymomot/authshell/pkg/ratelimiter"
)

// App wires the session container to its backing store and HTTP surface.
type App struct {
	config   Config
	loaded   bool
	logger   *slog.Logger
	store    kv.Store
	check    health.Check
	closer   io.Closer
	auth     session.Authenticator
	sessions *session.Container
	server   *server.Server
	limiter  *ratelimiter.MemoryStore

	closeOnce sync.Once
	closeErr  error
}

type AppOption func(*App) error

// NewApp loads Config from the environment unless WithConfig is given, then builds
// the logger, backing store, session container and server. Options override each part.
func NewApp(ctx context.Context, opts ...AppOption) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.loaded {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = logger.New(
			logger.ForEnv(app.config.Env, app.config.AppName),
			logger.WithLevel(logger.ParseLevel(app.config.LogLevel)),
		)
	}

	if app.store == nil {
		store, check, closer, err := OpenStore(ctx, app.config.Store, app.logger)
		if err != nil {
			return nil, err
		}
		app.store, app.check, app.closer = store, check, closer
	}

	sessOpts := []session.Option{session.WithLogger(app.logger)}
	if app.auth != nil {
		sessOpts = append(sessOpts, session.WithAuthenticator(app.auth))
	}
	sessions, err := session.NewFromConfig(ctx, app.config.Session, app.store, sessOpts...)
	if err != nil {
		_ = app.closeStore()
		return nil, err
	}
	app.sessions = sessions

	if app.config.LoginRateLimit.Capacity > 0 {
		limiter, err := ratelimiter.NewMemoryStore(app.config.LoginRateLimit,
			ratelimiter.WithMemoryStoreLogger(app.logger),
		)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.limiter = limiter
	}

	if app.server == nil {
		srv, err := server.NewFromConfig(app.config.Server, server.WithLogger(app.logger))
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.server = srv
	}

	app.logger.InfoContext(ctx, "app initialized",
		logger.Component("shell"),
		logger.Driver(app.config.Store.Driver),
		slog.Bool("session_sync", app.config.SessionSync),
	)
	return app, nil
}

// WithConfig uses cfg instead of loading the environment.
func WithConfig(cfg Config) AppOption {
	return func(app *App) error {
		app.config = cfg
		app.loaded = true
		return nil
	}
}

func WithLogger(l *slog.Logger) AppOption {
	return func(app *App) error {
		if l == nil {
			return errors.Join(ErrNilOption, errors.New("logger"))
		}
		app.logger = l
		return nil
	}
}

// WithStore bypasses the driver factory. The caller keeps ownership of store.
func WithStore(store kv.Store) AppOption {
	return func(app *App) error {
		if store == nil {
			return errors.Join(ErrNilOption, errors.New("store"))
		}
		app.store = store
		return nil
	}
}

func WithAuthenticator(a session.Authenticator) AppOption {
	return func(app *App) error {
		if a == nil {
			return errors.Join(ErrNilOption, errors.New("authenticator"))
		}
		app.auth = a
		return nil
	}
}

func WithServer(srv *server.Server) AppOption {
	return func(app *App) error {
		if srv == nil {
			return errors.Join(ErrNilOption, errors.New("server"))
		}
		app.server = srv
		return nil
	}
}

// Sessions returns the session container.
func (a *App) Sessions() *session.Container {
	return a.sessions
}

// Run serves HTTP and, when enabled, follows external snapshot writes until ctx
// is canceled. Resources are released before it returns.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("failed to release resources", logger.Component("shell"), logger.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(ctx, a.Handler()))
	if a.limiter != nil {
		g.Go(a.limiter.Run(ctx))
	}

	if a.config.SessionSync {
		g.Go(func() error {
			err := a.sessions.Sync(ctx)
			if errors.Is(err, kv.ErrWatchUnsupported) {
				a.logger.WarnContext(ctx, "session sync disabled: store cannot be watched",
					logger.Component("shell"),
					logger.Driver(a.config.Store.Driver),
				)
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// Close releases the container and the store opened by NewApp. Safe to call more than once.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		if a.sessions != nil {
			errs = append(errs, a.sessions.Close())
		}
		errs = append(errs, a.closeStore())
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

func (a *App) closeStore() error {
	if a.closer == nil {
		return nil
	}
	c := a.closer
	a.closer = nil
	return c.Close()
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.routes()
}
