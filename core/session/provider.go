package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Provider tags the identity source a login goes through.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderApple    Provider = "apple"
	ProviderFacebook Provider = "facebook"
)

// Providers lists every supported provider.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderApple, ProviderFacebook}
}

// ParseProvider normalises s and checks it against the supported set.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
	return p, nil
}

// Valid reports whether p is supported.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderApple, ProviderFacebook:
		return true
	}
	return false
}

// Domain is the email domain of accounts issued by p.
func (p Provider) Domain() string {
	return string(p) + ".com"
}

// Title is the human-readable provider name.
func (p Provider) Title() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Authenticator performs the identity-provider round trip for a login.
type Authenticator interface {
	Authenticate(ctx context.Context, p Provider) (Identity, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, p Provider) (Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, p Provider) (Identity, error) {
	return f(ctx, p)
}

const avatarCount = 70

// SimulatedAuthenticator stands in for a real OAuth exchange.
// It waits for the configured delay and then issues a templated identity for the provider.
type SimulatedAuthenticator struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// SimulatedOption configures a SimulatedAuthenticator.
type SimulatedOption func(*SimulatedAuthenticator)

// WithAvatarSeed makes avatar selection reproducible.
func WithAvatarSeed(seed uint64) SimulatedOption {
	return func(a *SimulatedAuthenticator) {
		a.rnd = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewSimulatedAuthenticator creates an authenticator that answers after delay.
func NewSimulatedAuthenticator(delay time.Duration, opts ...SimulatedOption) *SimulatedAuthenticator {
	a := &SimulatedAuthenticator{delay: delay}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate waits for the delay, honouring ctx, and returns
// {Name: "<Provider> User", Email: "user@<provider>.com"} with a random avatar.
func (a *SimulatedAuthenticator) Authenticate(ctx context.Context, p Provider) (Identity, error) {
	if !p.Valid() {
		return Identity{}, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return Identity{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	return Identity{
		ID:     uuid.NewString(),
		Name:   p.Title() + " User",
		Email:  "user@" + p.Domain(),
		Avatar: fmt.Sprintf("https://i.pravatar.cc/150?img=%d", a.avatarIndex()),
	}, nil
}

func (a *SimulatedAuthenticator) avatarIndex() int {
	if a.rnd == nil {
		return rand.IntN(avatarCount) + 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rnd.IntN(avatarCount) + 1
}
