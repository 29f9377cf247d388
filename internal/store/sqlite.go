// ABOUTME: SQL implementation of the Store interface over database/sql
// ABOUTME: Runs on modernc.org/sqlite, mattn/go-sqlite3 or Postgres through pgx with one kv table

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLStore implements Store on a single key/value table.
type SQLStore struct {
	db       *sql.DB
	logger   *slog.Logger
	postgres bool
	quota    int
}

// Option configures an SQLStore.
type Option func(*SQLStore)

// WithQuota caps the size of a single stored value.
func WithQuota(bytes int) Option {
	return func(s *SQLStore) { s.quota = bytes }
}

// NewSQLiteStore opens a pure-Go SQLite database at path.
// Parent directories are created if needed.
func NewSQLiteStore(path string, opts ...Option) (*SQLStore, error) {
	return openSQLite("sqlite", path, opts)
}

// NewSQLite3Store opens the database with the cgo mattn/go-sqlite3 driver.
func NewSQLite3Store(path string, opts ...Option) (*SQLStore, error) {
	return openSQLite("sqlite3", path, opts)
}

func openSQLite(driver, path string, opts []Option) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL lets the CLI read while a server process writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := newSQLStore(db, false, opts)
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Info("SQLite store initialized", "driver", driver, "path", path)
	return s, nil
}

// NewPostgresStore connects to Postgres using the pgx stdlib driver.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := newSQLStore(db, true, opts)
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Info("Postgres store initialized")
	return s, nil
}

func newSQLStore(db *sql.DB, postgres bool, opts []Option) *SQLStore {
	s := &SQLStore{
		db:       db,
		logger:   slog.Default().With("component", "store"),
		postgres: postgres,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLStore) createSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GetItem returns the value stored under key.
func (s *SQLStore) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM kv WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", key, err)
	}
	return value, nil
}

// SetItem upserts the value stored under key.
func (s *SQLStore) SetItem(ctx context.Context, key, value string) error {
	if err := checkQuota(s.quota, value); err != nil {
		return err
	}

	query := s.rebind(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key if present.
func (s *SQLStore) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM kv WHERE key = ?`), key); err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// Keys lists all keys in ascending order.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
