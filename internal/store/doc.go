// Package store provides the key/value persistence layer behind MyManager.
//
// # Architecture
//
// Store is a flat string-to-string namespace, the server-side stand-in for
// a browser's local storage. The storage package layers JSON snapshots, the
// activity log and session keys on top of it.
//
// Implementations:
//
//   - SQLStore: one "kv" table over database/sql. Drivers: "sqlite"
//     (modernc.org/sqlite), "sqlite3" (mattn/go-sqlite3) and "postgres"
//     (pgx stdlib).
//   - MockStore: maps guarded by a RWMutex, used by tests and the "memory"
//     driver.
//
// # Quota
//
// Both implementations accept a per-value byte quota. Writes over the quota
// fail with ErrQuotaExceeded, which the storage adapter logs and reports.
//
// # Usage
//
//	s, err := store.Open(ctx, store.Options{Driver: "sqlite", Path: "data/mymanager.db"})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
package store
