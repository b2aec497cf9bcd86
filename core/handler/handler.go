package handler

import "net/http"

// Response writes an HTTP response. A returned error is passed to the ErrorHandler
// when nothing has been written yet.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc produces a Response for a request.
type HandlerFunc func(r *http.Request) Response

// ErrorHandler renders an error returned by a HandlerFunc or Response.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Handle adapts fn to http.Handler. Middlewares run in the order given.
func Handle(fn HandlerFunc, onError ErrorHandler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		fn = mw[i](fn)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := resp(w, r); err != nil && onError != nil {
			onError(w, r, err)
		}
	})
}
