// ABOUTME: Key/value Store interface that backs the storage adapter
// ABOUTME: String keys to string values with last-writer-wins semantics, like browser local storage

package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested key does not exist
var ErrNotFound = errors.New("not found")

// ErrQuotaExceeded is returned when a value is larger than the configured quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrUnknownDriver is returned by Open for an unsupported driver name
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store is a flat key/value namespace. Values are opaque strings (the
// storage adapter writes JSON documents into them).
type Store interface {
	// GetItem returns the value stored under key, or ErrNotFound.
	GetItem(ctx context.Context, key string) (string, error)
	// SetItem overwrites the value stored under key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// Keys lists every stored key in ascending order.
	Keys(ctx context.Context) ([]string, error)
	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open
const (
	DriverSQLite   = "sqlite"   // modernc.org/sqlite, pure Go
	DriverSQLite3  = "sqlite3"  // github.com/mattn/go-sqlite3, cgo
	DriverPostgres = "postgres" // github.com/jackc/pgx/v5/stdlib
	DriverMemory   = "memory"
)

// Options configures Open.
type Options struct {
	Driver string
	// Path is the database file for the sqlite drivers.
	Path string
	// DSN is the connection string for postgres.
	DSN string
	// QuotaBytes caps the size of a single value. Zero means unlimited.
	QuotaBytes int
}

// Open returns the Store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverSQLite:
		return NewSQLiteStore(opts.Path, WithQuota(opts.QuotaBytes))
	case DriverSQLite3:
		return NewSQLite3Store(opts.Path, WithQuota(opts.QuotaBytes))
	case DriverPostgres:
		return NewPostgresStore(ctx, opts.DSN, WithQuota(opts.QuotaBytes))
	case DriverMemory:
		m := NewMockStore()
		m.SetQuota(opts.QuotaBytes)
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

func checkQuota(quota int, value string) error {
	if quota > 0 && len(value) > quota {
		return fmt.Errorf("%w: %d bytes over limit of %d", ErrQuotaExceeded, len(value), quota)
	}
	return nil
}
