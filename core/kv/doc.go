// Package kv defines the persistent key-value backing store used to keep session
// snapshots across process restarts.
//
// The Store interface is intentionally small: opaque byte values addressed by string
// keys. Local implementations live here (MemoryStore for tests and ephemeral runs,
// FileStore for single-host durability); networked drivers live under integration/.
//
// # Basic Usage
//
//	store := kv.NewMemoryStore()
//
//	if err := store.Set(ctx, "auth-storage", payload); err != nil {
//		return err
//	}
//
//	data, err := store.Get(ctx, "auth-storage")
//	if errors.Is(err, kv.ErrNotFound) {
//		// nothing persisted yet
//	}
//
// # Watching
//
// Stores that can observe writes made by other processes implement Watcher.
// FileStore does so with fsnotify:
//
//	store, err := kv.NewFileStore("./data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	changes, err := store.Watch(ctx, "auth-storage")
//	for range changes {
//		// reload
//	}
//
// # Error Handling
//
//   - ErrNotFound: the key has no value
//   - ErrEmptyKey: a blank key was supplied
//   - ErrStoreClosed: the store was closed
//   - ErrWatchUnsupported: Watch was requested from a store that cannot watch
package kv
