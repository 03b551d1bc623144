package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/leapstack-labs/drift/pkg/core"
)

// UpsertTable records a table and replaces its column descriptors. Column
// order becomes the stored position.
func (s *Store) UpsertTable(table core.TableRef, columns []core.Column) error {
	if s.db == nil {
		return fmt.Errorf("catalog not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tableID string
	err = tx.QueryRow(
		`SELECT id FROM asset_tables WHERE schema_name = ? AND table_name = ?`,
		table.Schema, table.Name,
	).Scan(&tableID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		tableID = generateID()
		if _, err := tx.Exec(
			`INSERT INTO asset_tables (id, schema_name, table_name) VALUES (?, ?, ?)`,
			tableID, table.Schema, table.Name,
		); err != nil {
			return fmt.Errorf("failed to insert table: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up table: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM asset_columns WHERE table_id = ?`, tableID); err != nil {
		return fmt.Errorf("failed to clear columns: %w", err)
	}
	for i, col := range columns {
		if _, err := tx.Exec(
			`INSERT INTO asset_columns (id, table_id, name, type, role, remapped, primary_key, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			generateID(), tableID, col.Name, col.Type, string(col.Role), col.Remapped, col.PrimaryKey, i,
		); err != nil {
			return fmt.Errorf("failed to insert column %s: %w", col.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table upsert: %w", err)
	}

	s.logger.Debug("table upserted", "table", table.String(), "columns", len(columns))
	return nil
}

// GetTable retrieves a table definition. A reference without a schema
// matches any schema; an ambiguous match is an error.
func (s *Store) GetTable(table core.TableRef) (*TableDef, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog not opened")
	}

	query := `SELECT id, schema_name, table_name FROM asset_tables WHERE table_name = ?`
	args := []any{table.Name}
	if table.Schema != "" {
		query += ` AND schema_name = ?`
		args = append(args, table.Schema)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query table: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []TableDef
	for rows.Next() {
		var def TableDef
		if err := rows.Scan(&def.ID, &def.Table.Schema, &def.Table.Name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	switch len(defs) {
	case 0:
		return nil, &NotFoundError{Kind: "table", Name: table.String()}
	case 1:
	default:
		return nil, fmt.Errorf("table reference %q is ambiguous across schemas, qualify it", table.Name)
	}

	def := defs[0]
	columns, err := s.tableColumns(def.ID)
	if err != nil {
		return nil, err
	}
	def.Columns = columns
	return &def, nil
}

// ListTables returns all cataloged tables with their columns, ordered by
// schema then name.
func (s *Store) ListTables() ([]TableDef, error) {
	if s.db == nil {
		return nil, fmt.Errorf("catalog not opened")
	}

	rows, err := s.db.Query(`SELECT id, schema_name, table_name FROM asset_tables ORDER BY schema_name, table_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []TableDef
	for rows.Next() {
		var def TableDef
		if err := rows.Scan(&def.ID, &def.Table.Schema, &def.Table.Name); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	for i := range defs {
		columns, err := s.tableColumns(defs[i].ID)
		if err != nil {
			return nil, err
		}
		defs[i].Columns = columns
	}
	return defs, nil
}

// tableColumns loads a table's column descriptors in stored position order.
func (s *Store) tableColumns(tableID string) ([]core.Column, error) {
	rows, err := s.db.Query(
		`SELECT name, type, role, remapped, primary_key FROM asset_columns WHERE table_id = ? ORDER BY position`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var role string
		if err := rows.Scan(&col.Name, &col.Type, &role, &col.Remapped, &col.PrimaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Role = core.Role(role)
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	return columns, nil
}
