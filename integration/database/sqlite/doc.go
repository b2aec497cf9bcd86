// Package sqlite provides an embedded kv.Store driver on modernc.org/sqlite (pure Go, no cgo).
//
// Open applies the goose migrations embedded in the package and enables WAL mode:
//
//	db, err := sqlite.Open(ctx, sqlite.Config{Path: "authshell.db"})
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	sessions, err := session.New(ctx, sqlite.NewStore(db))
package sqlite
