// Package handler defines the function types used to build HTTP endpoints:
// a HandlerFunc returns a Response, and Handle adapts it to http.Handler.
//
//	mux.Handle("GET /session", handler.Handle(func(r *http.Request) handler.Response {
//		return response.JSON(sessions.State())
//	}, response.JSONErrorHandler(log)))
package handler
