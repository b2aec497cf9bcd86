package binder

import "errors"

var (
	// ErrUnsupportedMediaType means the Content-Type is not one the binder accepts.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	ErrFailedToParseJSON  = errors.New("failed to parse JSON request body")
	ErrMissingContentType = errors.New("missing content type")
)
