package s3

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid s3 configuration: bucket and region are required")
	ErrBucketNotFound     = errors.New("s3 bucket not found")
	ErrAccessDenied       = errors.New("s3 access denied")
	ErrServiceUnavailable = errors.New("s3 service unavailable")
	ErrOperationTimeout   = errors.New("s3 operation timed out")
	ErrOperationCanceled  = errors.New("s3 operation canceled")
	ErrHealthcheckFailed  = errors.New("s3 healthcheck failed")
)
