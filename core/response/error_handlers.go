package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/authshell/core/handler"
	"github.com/dmitrymomot/authshell/core/logger"
)

// statusCode is implemented by errors that carry an HTTP status.
type statusCode interface {
	StatusCode() int
}

func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	return base.WithError(err)
}

// JSONErrorHandler renders errors as JSON. Server errors are logged.
func JSONErrorHandler(log *slog.Logger) handler.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		httpErr := convertToHTTPError(err)
		if httpErr.Status >= http.StatusInternalServerError {
			log.ErrorContext(r.Context(), "request failed",
				logger.Component("http"),
				slog.String("path", r.URL.Path),
				logger.Error(err),
			)
		}
		_ = JSONWithStatus(httpErr, httpErr.Status)(w, r)
	}
}
