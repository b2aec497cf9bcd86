package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authshell/core/logger"
)

// Check is a dependency probe, usually a driver's Healthcheck.
type Check func(context.Context) error

// Readiness verifies every dependency. Responds "READY" when all checks pass,
// 503 Service Unavailable on the first failure.
//
// Example:
//
//	mux.Handle("GET /health/ready", health.Readiness(log, redis.Healthcheck(client)))
func Readiness(log *slog.Logger, checks ...Check) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component("health"),
					logger.Error(err),
				)
				writeText(w, http.StatusServiceUnavailable, "NOT READY")
				return
			}
		}
		writeText(w, http.StatusOK, "READY")
	})
}
