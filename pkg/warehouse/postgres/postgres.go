// Package postgres provides a PostgreSQL warehouse source for Drift.
//
// Import this package with a blank identifier to register the source:
//
//	import _ "github.com/leapstack-labs/drift/pkg/warehouse/postgres"
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/leapstack-labs/drift/pkg/core"
	"github.com/leapstack-labs/drift/pkg/warehouse"
)

func init() {
	warehouse.Register("postgres", func(logger *slog.Logger) warehouse.Source { return New(logger) })
}

// Source implements the warehouse.Source interface for PostgreSQL.
type Source struct {
	warehouse.BaseSQLSource
}

// New creates a new PostgreSQL source instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Source{
		BaseSQLSource: warehouse.BaseSQLSource{Logger: logger, DefaultSchema: "public"},
	}
}

// Connect establishes a connection to PostgreSQL.
func (s *Source) Connect(ctx context.Context, cfg core.SourceConfig) error {
	dsn := buildPostgresDSN(cfg)

	s.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.DB = db
	s.Cfg = cfg
	if cfg.Schema != "" {
		s.DefaultSchema = cfg.Schema
	}
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg core.SourceConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}

	return strings.Join(parts, " ")
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

// TableColumns retrieves the declared columns of a table, marking primary
// key columns via pg_index.
func (s *Source) TableColumns(ctx context.Context, table core.TableRef) ([]core.Column, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	schema := table.Schema
	if schema == "" {
		schema = s.DefaultSchema
	}

	const colQuery = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := s.DB.QueryContext(ctx, colQuery, schema, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
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

	const pkQuery = `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = ($1 || '.' || $2)::regclass AND i.indisprimary
	`
	pkRows, err := s.DB.QueryContext(ctx, pkQuery, schema, table.Name)
	if err != nil {
		// Primary key detection is best-effort; columns are still usable.
		s.Logger.Debug("primary key detection failed", "table", table.String(), "error", err)
		return columns, nil
	}
	defer func() { _ = pkRows.Close() }()

	pks := make(map[string]bool)
	for pkRows.Next() {
		var name string
		if err := pkRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan primary key column: %w", err)
		}
		pks[name] = true
	}
	if err := pkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary key columns: %w", err)
	}

	for i := range columns {
		if pks[columns[i].Name] {
			columns[i].PrimaryKey = true
		}
	}
	return columns, nil
}
