package shell

import "errors"

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrNilOption     = errors.New("option value cannot be nil")
)
