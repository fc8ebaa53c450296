// Package state persists store snapshots to SQLite. A snapshot row holds
// the encoder's canonical document text, which is the only persisted form;
// restoring re-decodes every row.
package state

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore reads and writes document snapshots in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite snapshot store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database, creating the file when it
// does not exist. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// The pool would otherwise hand each connection its own empty
		// database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection. Closing an unopened or already
// closed store is harmless.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database location given to Open.
func (s *SQLiteStore) Path() string {
	return s.path
}
