package shell

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/authshell/core/binder"
	"github.com/dmitrymomot/authshell/core/handler"
	"github.com/dmitrymomot/authshell/core/health"
	"github.com/dmitrymomot/authshell/core/logger"
	"github.com/dmitrymomot/authshell/core/response"
	"github.com/dmitrymomot/authshell/core/session"
	"github.com/dmitrymomot/authshell/pkg/ratelimiter"
)

type loginRequest struct {
	Provider string `json:"provider"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (a *App) routes() http.Handler {
	onError := response.JSONErrorHandler(a.logger)
	h := func(fn handler.HandlerFunc, mw ...handler.Middleware) http.Handler {
		return handler.Handle(fn, onError, mw...)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /session", h(a.getSession))
	mux.Handle("POST /session/login", h(a.login, a.rateLimit))
	mux.Handle("POST /session/logout", h(a.logout))
	mux.Handle("PATCH /session/profile", h(a.updateProfile))
	mux.Handle("PUT /session/location", h(a.updateLocation))
	mux.Handle("GET /session/events", h(a.events))

	mux.Handle("GET /health/live", health.Liveness())
	mux.Handle("GET /health/ready", health.Readiness(a.logger, a.check))
	return mux
}

func (a *App) getSession(r *http.Request) handler.Response {
	return response.JSON(a.sessions.State())
}

// login blocks until the round trip finishes. With ?async=true it returns 202 and
// the loading state immediately; progress is visible on /session/events.
func (a *App) login(r *http.Request) handler.Response {
	var req loginRequest
	if err := binder.JSON(0)(r, &req); err != nil {
		return response.Error(bindError(err))
	}
	provider, err := session.ParseProvider(req.Provider)
	if err != nil {
		return response.Error(sessionError(err))
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		ctx := context.WithoutCancel(r.Context())

		// Wait for the loading state to be published before answering.
		subCtx, cancel := context.WithCancel(r.Context())
		defer cancel()
		sub := a.sessions.Subscribe(subCtx)
		defer sub.Close()

		future := a.sessions.LoginAsync(ctx, provider)
		go func() {
			if err := future.Await(); err != nil {
				a.logger.WarnContext(ctx, "background login failed",
					logger.Component("shell"),
					logger.Provider(string(provider)),
					logger.Error(err),
				)
			}
		}()
		select {
		case <-sub.Receive(subCtx):
		case <-future.Done():
		case <-r.Context().Done():
		}
		return response.JSONWithStatus(a.sessions.State(), http.StatusAccepted)
	}

	if err := a.sessions.Login(r.Context(), provider); err != nil {
		return response.Error(sessionError(err))
	}
	return response.JSON(a.sessions.State())
}

func (a *App) logout(r *http.Request) handler.Response {
	if err := a.sessions.Logout(r.Context()); err != nil {
		return response.Error(sessionError(err))
	}
	return response.JSON(a.sessions.State())
}

func (a *App) updateProfile(r *http.Request) handler.Response {
	var patch session.IdentityPatch
	if err := binder.JSON(0)(r, &patch); err != nil {
		return response.Error(bindError(err))
	}
	if err := a.sessions.UpdateProfile(r.Context(), patch); err != nil {
		return response.Error(sessionError(err))
	}
	return response.JSON(a.sessions.State())
}

func (a *App) updateLocation(r *http.Request) handler.Response {
	var req locationRequest
	if err := binder.JSON(0)(r, &req); err != nil {
		return response.Error(bindError(err))
	}
	if req.Latitude == nil || req.Longitude == nil {
		return response.Error(response.ErrUnprocessableEntity.WithMessage("latitude and longitude are required"))
	}
	if err := a.sessions.UpdateLocation(r.Context(), *req.Latitude, *req.Longitude); err != nil {
		return response.Error(sessionError(err))
	}
	return response.JSON(a.sessions.State())
}

// events streams the current state followed by every change.
func (a *App) events(r *http.Request) handler.Response {
	ctx := r.Context()
	sub := a.sessions.Subscribe(ctx)

	states := make(chan session.State, 1)
	states <- a.sessions.State()
	go func() {
		defer close(states)
		defer sub.Close()
		for msg := range sub.Receive(ctx) {
			select {
			case states <- msg.Data:
			case <-ctx.Done():
				return
			}
		}
	}()

	return response.SSE(states,
		response.WithEventName("state"),
		response.WithSSEErrorHandler(func(ctx context.Context, err error) {
			a.logger.DebugContext(ctx, "event stream write failed", logger.Component("shell"), logger.Error(err))
		}),
	)
}

// rateLimit rejects logins from a client that exhausted its bucket.
func (a *App) rateLimit(next handler.HandlerFunc) handler.HandlerFunc {
	if a.limiter == nil {
		return next
	}
	return func(r *http.Request) handler.Response {
		res, err := a.limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			return response.Error(err)
		}
		if !res.Allowed {
			retry := int(res.RetryAfter().Round(time.Second).Seconds())
			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				return response.ErrTooManyRequests.WithError(ratelimiter.ErrRateLimitExceeded)
			}
		}
		return next(r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func bindError(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMediaType.WithMessage(err.Error())
	default:
		return response.ErrBadRequest.WithMessage(err.Error())
	}
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrUnknownProvider):
		return response.ErrBadRequest.WithMessage(err.Error())
	case errors.Is(err, session.ErrInvalidProfile), errors.Is(err, session.ErrInvalidLocation):
		return response.ErrUnprocessableEntity.WithMessage(err.Error())
	case errors.Is(err, session.ErrLoginSuperseded):
		return response.ErrConflict.WithMessage(err.Error())
	case errors.Is(err, session.ErrPersist):
		return response.ErrServiceUnavailable.WithMessage("state changed but could not be persisted").WithError(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return response.ErrRequestTimeout.WithError(err)
	default:
		// Authenticator failures.
		return response.ErrBadGateway.WithMessage("login failed").WithError(err)
	}
}
