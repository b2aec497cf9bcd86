package response_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authshell/core/logger"
	"github.com/dmitrymomot/authshell/core/response"
)

func TestJSONWithStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   any
		status int
		code   int
		body   string
	}{
		{name: "ok", data: map[string]int{"a": 1}, status: http.StatusOK, code: http.StatusOK, body: `{"a":1}`},
		{name: "created", data: []int{1}, status: http.StatusCreated, code: http.StatusCreated, body: `[1]`},
		{name: "zero status nil data", data: nil, status: 0, code: http.StatusNoContent},
		{name: "zero status with data", data: "x", status: 0, code: http.StatusOK, body: `"x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			err := response.JSONWithStatus(tt.data, tt.status)(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.code, rec.Code)
			if tt.body == "" {
				assert.Empty(t, rec.Body.String())
				return
			}
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

type coded struct{ status int }

func (c coded) Error() string   { return "coded" }
func (c coded) StatusCode() int { return c.status }

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{name: "http error", err: response.ErrBadRequest.WithMessage("bad provider"), code: http.StatusBadRequest, kind: "bad_request"},
		{name: "wrapped http error", err: fmt.Errorf("wrap: %w", response.ErrConflict), code: http.StatusConflict, kind: "conflict"},
		{name: "status coder", err: coded{status: http.StatusGatewayTimeout}, code: http.StatusGatewayTimeout, kind: "gateway_timeout"},
		{name: "unknown status coder", err: coded{status: 599}, code: http.StatusInternalServerError, kind: "internal_server_error"},
		{name: "plain error", err: errors.New("boom"), code: http.StatusInternalServerError, kind: "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			response.JSONErrorHandler(logger.Nop())(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.code, rec.Code)
			var body response.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Code)
		})
	}
}

func TestHTTPError_WithErrorDoesNotShareDetails(t *testing.T) {
	t.Parallel()

	a := response.ErrBadRequest.WithError(errors.New("a"))
	b := response.ErrBadRequest.WithError(errors.New("b"))
	assert.Equal(t, "a", a.Details["cause"])
	assert.Equal(t, "b", b.Details["cause"])
	assert.Nil(t, response.ErrBadRequest.Details)
}

func TestSSE(t *testing.T) {
	t.Parallel()

	t.Run("streams until channel closes", func(t *testing.T) {
		t.Parallel()

		events := make(chan map[string]bool, 2)
		events <- map[string]bool{"isAuthenticated": false}
		events <- map[string]bool{"isAuthenticated": true}
		close(events)

		rec := httptest.NewRecorder()
		err := response.SSE(events, response.WithEventName("state"), response.WithoutKeepAlive())(
			rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		out := rec.Body.String()
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(out, ": connected\n\n"))
		assert.Equal(t, 2, strings.Count(out, "event: state\n"))
		assert.Contains(t, out, `data: {"isAuthenticated":true}`+"\n\n")
	})

	t.Run("stops when client goes away", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := httptest.NewRecorder()
		err := response.SSE(make(chan string), response.WithEventIDGenerator(func(any) string { return "1" }))(
			rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		require.NoError(t, err)
		assert.Equal(t, ": connected\n\n", rec.Body.String())
	})
}
