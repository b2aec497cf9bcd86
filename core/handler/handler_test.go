package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authshell/core/handler"
)

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("writes response", func(t *testing.T) {
		t.Parallel()

		h := handler.Handle(func(*http.Request) handler.Response {
			return func(w http.ResponseWriter, _ *http.Request) error {
				w.WriteHeader(http.StatusAccepted)
				return nil
			}
		}, nil)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("nil response is no content", func(t *testing.T) {
		t.Parallel()

		h := handler.Handle(func(*http.Request) handler.Response { return nil }, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("error goes to error handler", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var got error
		h := handler.Handle(func(*http.Request) handler.Response {
			return func(http.ResponseWriter, *http.Request) error { return boom }
		}, func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusTeapot)
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, got, boom)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("middleware order", func(t *testing.T) {
		t.Parallel()

		var order []string
		mw := func(name string) handler.Middleware {
			return func(next handler.HandlerFunc) handler.HandlerFunc {
				return func(r *http.Request) handler.Response {
					order = append(order, name)
					return next(r)
				}
			}
		}

		h := handler.Handle(func(*http.Request) handler.Response { return nil }, nil, mw("a"), mw("b"))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"a", "b"}, order)
	})
}
