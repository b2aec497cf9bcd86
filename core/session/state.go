package session

import "encoding/json"

// Status is the coarse authentication status of a State.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State is an immutable view of the session.
// Authentication is derived from the presence of an identity, so a State can never
// claim to be authenticated without a user or carry a user while unauthenticated.
// While a login is in flight the State reports StatusAuthenticating and keeps the
// identity it had before, which is what a failed login falls back to.
type State struct {
	identity *Identity
	loading  bool
}

// Unauthenticated returns the initial state.
func Unauthenticated() State {
	return State{}
}

// Authenticated returns a settled state for id.
func Authenticated(id Identity) State {
	c := id.clone()
	return State{identity: &c}
}

// Status reports the variant of the state.
func (s State) Status() Status {
	switch {
	case s.loading:
		return StatusAuthenticating
	case s.identity != nil:
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

// IsAuthenticated reports whether an identity is present.
func (s State) IsAuthenticated() bool {
	return s.identity != nil
}

// Loading reports whether a login attempt is in flight.
func (s State) Loading() bool {
	return s.loading
}

// User returns a copy of the identity, if any.
func (s State) User() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return s.identity.clone(), true
}

// Snapshot returns the persisted projection of s. Loading is not part of it.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{IsAuthenticated: s.identity != nil}
	if s.identity != nil {
		u := s.identity.clone()
		snap.User = &u
	}
	return snap
}

// Equal reports whether both states have the same identity and loading flag.
func (s State) Equal(other State) bool {
	return s.loading == other.loading && s.sameUser(other)
}

func (s State) sameUser(other State) bool {
	if s.identity == nil || other.identity == nil {
		return s.identity == nil && other.identity == nil
	}
	return s.identity.Equal(*other.identity)
}

func (s State) withLoading(loading bool) State {
	s.loading = loading
	return s
}

func (s State) withUser(id *Identity) State {
	if id != nil {
		c := id.clone()
		id = &c
	}
	s.identity = id
	return s
}

type stateJSON struct {
	User            *Identity `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	Loading         bool      `json:"loading"`
	Status          string    `json:"status"`
}

// MarshalJSON renders the full view consumed by clients, including the transient loading flag.
func (s State) MarshalJSON() ([]byte, error) {
	snap := s.Snapshot()
	return json.Marshal(stateJSON{
		User:            snap.User,
		IsAuthenticated: snap.IsAuthenticated,
		Loading:         s.loading,
		Status:          s.Status().String(),
	})
}
