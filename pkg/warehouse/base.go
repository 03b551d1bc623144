package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/drift/pkg/core"
)

// BaseSQLSource provides common database/sql functionality for sources.
// Embed this struct in concrete source implementations to get standard
// Close, Fetch, and Execute implementations on top of a *sql.DB.
type BaseSQLSource struct {
	DB     *sql.DB
	Cfg    core.SourceConfig
	Logger *slog.Logger

	// DefaultSchema is used when a TableRef carries no schema.
	DefaultSchema string
}

// Close closes the database connection.
func (b *BaseSQLSource) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing warehouse connection")
		}
		return b.DB.Close()
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLSource) IsConnected() bool {
	return b.DB != nil
}

// Fetch retrieves the dataset described by ref.
func (b *BaseSQLSource) Fetch(ctx context.Context, ref core.DatasetRef, opts core.QueryOptions) (*core.Dataset, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	query := b.buildSelect(ref, opts)
	if b.Logger != nil {
		b.Logger.Debug("fetching dataset", "table", ref.Table.String(), "limit", opts.Limit)
	}

	ds, err := b.queryDataset(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref.Table.String(), err)
	}

	// Declared descriptors win over driver-derived ones: they carry the
	// catalog's roles and exclusion flags and are selected positionally.
	if len(ref.Columns) > 0 {
		ds.Cols = ref.Columns
	}
	return ds, nil
}

// Execute runs a card query definition. A positive limit wraps the query in
// a subselect so sampling works for arbitrary statements.
func (b *BaseSQLSource) Execute(ctx context.Context, q core.QueryDef, opts core.QueryOptions) (*core.Dataset, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("warehouse connection not established")
	}

	query := q.SQL
	if opts.Limit > 0 {
		query = fmt.Sprintf("SELECT * FROM (%s) AS card_query LIMIT %d", strings.TrimRight(strings.TrimSpace(q.SQL), ";"), opts.Limit)
	}
	if b.Logger != nil {
		b.Logger.Debug("executing card query", "limit", opts.Limit)
	}

	ds, err := b.queryDataset(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute card query: %w", err)
	}
	return ds, nil
}

// buildSelect constructs the retrieval SQL for a dataset reference.
// Identifiers are quoted; the predicate is stored catalog configuration and
// is inlined as-is, like model SQL.
func (b *BaseSQLSource) buildSelect(ref core.DatasetRef, opts core.QueryOptions) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")

	if len(ref.Columns) == 0 {
		sb.WriteString("*")
	} else {
		for i, col := range ref.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(QuoteIdent(col.Name))
		}
	}

	sb.WriteString(" FROM ")
	sb.WriteString(b.QualifiedName(ref.Table))

	if ref.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(ref.Where)
	}

	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}

	return sb.String()
}

// QualifiedName returns the quoted schema-qualified table name, falling
// back to the source's default schema.
func (b *BaseSQLSource) QualifiedName(table core.TableRef) string {
	schema := table.Schema
	if schema == "" {
		schema = b.DefaultSchema
	}
	if schema == "" {
		return QuoteIdent(table.Name)
	}
	return QuoteIdent(schema) + "." + QuoteIdent(table.Name)
}

// QuoteIdent double-quotes a SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// queryDataset runs a query and scans the full result into a Dataset.
// Cell values are normalized: []byte becomes string.
func (b *BaseSQLSource) queryDataset(ctx context.Context, query string) (*core.Dataset, error) {
	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	cols := make([]core.Column, len(names))
	for i, name := range names {
		cols[i] = core.Column{Name: name}
	}
	if types, err := rows.ColumnTypes(); err == nil {
		for i, t := range types {
			if i < len(cols) {
				cols[i].Type = t.DatabaseTypeName()
			}
		}
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if bs, ok := v.([]byte); ok {
				values[i] = string(bs)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &core.Dataset{Cols: cols, Rows: data}, nil
}

// ParseQualifiedName splits a "schema.table" reference, applying the
// default schema when none is given.
func ParseQualifiedName(table, defaultSchema string) core.TableRef {
	if parts := strings.SplitN(table, ".", 2); len(parts) == 2 {
		return core.TableRef{Schema: parts[0], Name: parts[1]}
	}
	return core.TableRef{Schema: defaultSchema, Name: table}
}
