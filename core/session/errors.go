package session

import "errors"

var (
	// ErrUnknownProvider is returned by Login for a provider tag outside the supported set.
	ErrUnknownProvider = errors.New("unknown identity provider")
	// ErrLoginSuperseded is returned by a login attempt whose result was discarded because a newer attempt started.
	ErrLoginSuperseded = errors.New("login superseded by a newer attempt")
	// ErrPersist is returned when the backing store rejects a snapshot write. The in-memory state is already updated.
	ErrPersist = errors.New("failed to persist session snapshot")
	// ErrRehydrate is returned when the backing store cannot be read.
	ErrRehydrate = errors.New("failed to rehydrate session")
	// ErrCorruptSnapshot is returned when a stored snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt session snapshot")
	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported session snapshot version")
	// ErrNilStore is returned when a container is created without a backing store.
	ErrNilStore = errors.New("backing store is required")
	// ErrInvalidProfile is returned when a profile patch carries invalid values.
	ErrInvalidProfile = errors.New("invalid profile update")
	// ErrInvalidLocation is returned for out-of-range coordinates.
	ErrInvalidLocation = errors.New("invalid location")
)
