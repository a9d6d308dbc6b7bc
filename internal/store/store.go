// Package store archives grading runs in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle and provides access to repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunRepo returns a RunRepo backed by this store.
func (s *Store) RunRepo() RunRepo {
	return &runRepo{db: s.db}
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                  TEXT PRIMARY KEY,
	kind                TEXT NOT NULL,
	source              TEXT NOT NULL,
	created_at          TEXT NOT NULL,
	students            INTEGER NOT NULL,
	dropped             INTEGER NOT NULL DEFAULT 0,
	proportion_improved REAL,
	policy              TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS student_results (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	pid        TEXT NOT NULL,
	total      REAL,
	grade      TEXT NOT NULL,
	post_total REAL,
	post_grade TEXT,
	PRIMARY KEY (run_id, pid)
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GRADEBOOK_DB environment variable
// 2. $XDG_DATA_HOME/gradebook/runs.db
// 3. ~/.local/share/gradebook/runs.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GRADEBOOK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "gradebook", "runs.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
