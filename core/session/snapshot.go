package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// DefaultStorageKey is the backing store key the snapshot is written under.
	DefaultStorageKey = "auth-storage"
	// SnapshotVersion is the envelope version written by EncodeSnapshot.
	SnapshotVersion = 0
)

// Snapshot is the persisted projection of a State: user and isAuthenticated only.
type Snapshot struct {
	User            *Identity `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}

// State converts the snapshot into a settled State.
// A snapshot whose two fields disagree is treated as unauthenticated.
func (s Snapshot) State() State {
	if s.User == nil || !s.IsAuthenticated {
		return Unauthenticated()
	}
	return Authenticated(*s.User)
}

type envelope struct {
	State   *Snapshot `json:"state"`
	Version int       `json:"version"`
}

// EncodeSnapshot serialises the persisted projection of s.
func EncodeSnapshot(s State) ([]byte, error) {
	snap := s.Snapshot()
	data, err := json.Marshal(envelope{State: &snap, Version: SnapshotVersion})
	if err != nil {
		return nil, fmt.Errorf("session: encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses data written by EncodeSnapshot and returns the rehydrated State.
// The returned State is never loading.
func DecodeSnapshot(data []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Unauthenticated(), errors.Join(ErrCorruptSnapshot, err)
	}
	if env.Version > SnapshotVersion {
		return Unauthenticated(), fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.State == nil {
		return Unauthenticated(), fmt.Errorf("%w: missing state", ErrCorruptSnapshot)
	}
	return env.State.State(), nil
}
