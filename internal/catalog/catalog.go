// Package catalog stores asset definitions in a local SQLite database:
// discovered warehouse tables and their columns, saved segments, and saved
// cards. Only definitions live here; extraction results are computed on
// demand and never persisted.
package catalog

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/drift/pkg/core"
)

// TableDef is a discovered or declared warehouse table.
type TableDef struct {
	ID      string
	Table   core.TableRef
	Columns []core.Column
}

// Segment is a saved filter over a table.
type Segment struct {
	ID          string
	Name        string
	Table       core.TableRef
	Predicate   string
	Description string
	CreatedAt   time.Time
}

// Card is a saved query with optional visualization hints.
type Card struct {
	ID          string
	Name        string
	Table       core.TableRef
	Query       core.QueryDef
	Description string
	CreatedAt   time.Time
}

// NotFoundError is returned when a catalog lookup misses.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found in catalog\nHint: run 'drift discover' to sync tables or 'drift import' to load definitions", e.Kind, e.Name)
}

// Store is a SQLite-backed asset catalog.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a catalog store instance. If logger is nil, a discard
// logger is used.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Open opens the catalog database, creating parent directories for
// file-backed paths. Use ":memory:" for an in-memory catalog.
func (s *Store) Open(path string) error {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping catalog database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("catalog opened", "path", path)
	return nil
}

// Close closes the catalog database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}
