// Package binder decodes HTTP request bodies into Go values.
//
// JSON is strict: it checks the media type, limits the body size, rejects unknown
// fields and trailing data. All failures wrap one of the package errors, so callers
// can map them with errors.Is:
//
//	var req struct {
//		Provider string `json:"provider"`
//	}
//	if err := binder.JSON(0)(r, &req); err != nil {
//		if errors.Is(err, binder.ErrUnsupportedMediaType) {
//			// 415
//		}
//		// 400
//	}
package binder
