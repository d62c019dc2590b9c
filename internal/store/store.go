package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fairwaykit/fairway/internal/canon"
)

//go:embed schema.sql
var schemaSQL string

// recordedAtFormat is RFC 3339 UTC with fixed nanosecond width so that
// lexicographic TEXT comparison equals chronological comparison.
const recordedAtFormat = "2006-01-02T15:04:05.000000000Z"

// Store provides durable storage for fairway's authoritative entities.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db    *sql.DB
	codec canon.Codec
	now   func() time.Time
}

// Option configures a Store at Open time.
type Option func(*Store)

// WithCodec replaces the hashing codec. Tests use this to assert that
// insert paths canonicalize exactly once and fetch paths never do.
func WithCodec(c canon.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithClock replaces the wall clock used for created_at/recorded_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection
	// serializes writers and avoids SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{
		db:    db,
		codec: canon.DefaultCodec{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// timestamp renders the current clock reading in stored form.
func (s *Store) timestamp() string {
	return s.now().UTC().Format(recordedAtFormat)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// beginTx starts a write transaction.
func (s *Store) beginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}
