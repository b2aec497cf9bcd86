package binder_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authshell/core/binder"
)

type loginRequest struct {
	Provider string `json:"provider"`
}

func newRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/session/login", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes", func(t *testing.T) {
		t.Parallel()

		var req loginRequest
		err := binder.JSON(0)(newRequest(`{"provider":"google"}`, "application/json; charset=utf-8"), &req)
		require.NoError(t, err)
		assert.Equal(t, "google", req.Provider)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		maxSize     int64
		want        error
	}{
		{name: "missing content type", body: `{}`, want: binder.ErrMissingContentType},
		{name: "wrong media type", body: `{}`, contentType: "text/plain", want: binder.ErrUnsupportedMediaType},
		{name: "empty body", body: ``, contentType: "application/json", want: binder.ErrFailedToParseJSON},
		{name: "unknown field", body: `{"provider":"google","x":1}`, contentType: "application/json", want: binder.ErrFailedToParseJSON},
		{name: "trailing data", body: `{"provider":"google"}{}`, contentType: "application/json", want: binder.ErrFailedToParseJSON},
		{name: "wrong type", body: `{"provider":1}`, contentType: "application/json", want: binder.ErrFailedToParseJSON},
		{name: "too large", body: `{"provider":"google"}`, contentType: "application/json", maxSize: 4, want: binder.ErrFailedToParseJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req loginRequest
			err := binder.JSON(tt.maxSize)(newRequest(tt.body, tt.contentType), &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
