// Package duckdb provides a DuckDB warehouse source for Drift.
//
// Import this package with a blank identifier to register the source:
//
//	import _ "github.com/leapstack-labs/drift/pkg/warehouse/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/drift/pkg/core"
	"github.com/leapstack-labs/drift/pkg/warehouse"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

func init() {
	warehouse.Register("duckdb", func(logger *slog.Logger) warehouse.Source { return New(logger) })
}

// Source implements the warehouse.Source interface for DuckDB.
type Source struct {
	warehouse.BaseSQLSource
}

// New creates a new DuckDB source instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{
		BaseSQLSource: warehouse.BaseSQLSource{Logger: logger, DefaultSchema: "main"},
	}
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" as the path for an in-memory database.
func (s *Source) Connect(ctx context.Context, cfg core.SourceConfig) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	s.DB = db
	s.Cfg = cfg
	if cfg.Schema != "" {
		s.DefaultSchema = cfg.Schema
	}

	params, err := ParseParams(cfg.Params)
	if err != nil {
		_ = db.Close()
		s.DB = nil
		return fmt.Errorf("invalid duckdb params: %w", err)
	}
	if err := s.applyParams(ctx, params); err != nil {
		_ = db.Close()
		s.DB = nil
		return err
	}

	return nil
}

// applyParams installs extensions and applies session settings.
func (s *Source) applyParams(ctx context.Context, params *Params) error {
	for _, ext := range params.Extensions {
		s.Logger.Debug("loading duckdb extension", "extension", ext)
		if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return fmt.Errorf("failed to load extension %s: %w", ext, err)
		}
	}
	for key, value := range params.Settings {
		if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("SET %s = '%s'", key, value)); err != nil {
			return fmt.Errorf("failed to apply setting %s: %w", key, err)
		}
	}
	return nil
}

// Tables lists the user tables visible to the connection.
func (s *Source) Tables(ctx context.Context) ([]core.TableRef, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	const query = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('information_schema', 'pg_catalog')
		ORDER BY table_schema, table_name
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []core.TableRef
	for rows.Next() {
		var t core.TableRef
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// TableColumns retrieves the declared columns of a table.
// DuckDB's pragma_table_info carries the primary key flag directly.
func (s *Source) TableColumns(ctx context.Context, table core.TableRef) ([]core.Column, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	name := table.Name
	if table.Schema != "" {
		name = table.Schema + "." + table.Name
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		if err := rows.Scan(&col.Name, &col.Type, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table.String())
	}
	return columns, nil
}
