package async

import "errors"

// ErrTimeout is returned when AwaitWithTimeout gives up before the work completes.
var ErrTimeout = errors.New("async: timeout waiting for result")
