// Package response provides handler.Response constructors: JSON bodies, structured
// HTTP errors, and Server-Sent Events streams.
//
//	func getState(r *http.Request) handler.Response {
//		return response.JSON(sessions.State())
//	}
//
//	func badInput(r *http.Request) handler.Response {
//		return response.Error(response.ErrBadRequest.WithMessage("unknown provider"))
//	}
//
// Errors that implement StatusCode() int are mapped to the matching HTTPError by
// JSONErrorHandler. Anything else becomes 500 and is logged.
//
// SSE streams a typed channel; non-string values are JSON encoded:
//
//	return response.SSE(updates, response.WithEventName("state"))
package response
