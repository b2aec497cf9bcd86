// Package session provides the client session state container: who is logged in,
// whether a login is in flight, and a durable snapshot of both that survives restarts.
//
// # Core Components
//
//   - State: immutable tagged view (Unauthenticated, Authenticating, Authenticated).
//     IsAuthenticated is derived from the presence of an identity, never stored on its own.
//   - Container: owns the in-memory State and mutates it through Login, Logout,
//     UpdateProfile and UpdateLocation.
//   - Authenticator: the identity-provider round trip. SimulatedAuthenticator issues a
//     templated identity after a delay.
//   - Snapshot: the persisted projection {user, isAuthenticated}. Loading is never persisted.
//
// # Basic Usage
//
// The container is created once by the composition root and handed to its consumers:
//
//	store, err := kv.NewFileStore("./data")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sessions, err := session.New(ctx, store,
//		session.WithLogger(log),
//		session.WithLoginDelay(500*time.Millisecond),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sessions.Close()
//
//	if err := sessions.Login(ctx, session.ProviderGoogle); err != nil {
//		return err
//	}
//
//	user, _ := sessions.State().User()
//	fmt.Println(user.Email) // user@google.com
//
// # Persistence
//
// Every committed change is written before the operation returns, so callers can rely on
// the store being current once a call has succeeded. Flush rewrites the snapshot on demand.
// The record is JSON under a single key (DefaultStorageKey):
//
//	{"state":{"user":{"id":"...","name":"Google User","email":"user@google.com"},"isAuthenticated":true},"version":0}
//
// A write failure is reported as ErrPersist; the in-memory state has already changed and
// the next successful write brings the store up to date.
//
// # Concurrent Logins
//
// Login attempts are numbered. Only the newest attempt commits its result; an older attempt
// that completes later is discarded and returns ErrLoginSuperseded. Cancelling the context
// passed to Login aborts the round trip and follows the failure path.
//
// # Reacting to Changes
//
// Subscribe delivers every published State to views:
//
//	sub := sessions.Subscribe(ctx)
//	defer sub.Close()
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// When the backing store implements kv.Watcher, Sync keeps several processes that share
// the store consistent by rehydrating after writes made elsewhere.
//
// # Profile Updates
//
// UpdateProfile and UpdateLocation are silent no-ops while nobody is logged in.
// UpdateProfile merges only the fields set on the IdentityPatch:
//
//	name := "Ada"
//	err := sessions.UpdateProfile(ctx, session.IdentityPatch{Name: &name})
package session
