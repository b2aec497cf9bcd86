package kv

import "errors"

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("kv: key not found")
	// ErrEmptyKey is returned when a blank key is supplied.
	ErrEmptyKey = errors.New("kv: key is required")
	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("kv: store is closed")
	// ErrWatchUnsupported is returned when watching is requested from a store that cannot watch.
	ErrWatchUnsupported = errors.New("kv: store does not support watching")
)
