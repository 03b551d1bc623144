package core

// SourceConfig holds configuration for connecting to a warehouse.
type SourceConfig struct {
	Type string `koanf:"type"` // duckdb, postgres

	// File-based warehouses (DuckDB)
	Path string `koanf:"path"` // file path or ":memory:"

	// Network warehouses
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// Common
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds source-specific configuration (e.g. DuckDB extensions, settings)
	Params map[string]any `koanf:"params"`
}

// QueryOptions bound a single retrieval.
type QueryOptions struct {
	// Limit caps the number of rows returned. Zero means no limit.
	Limit int
}

// DatasetRef describes a dataset to retrieve from a warehouse source.
type DatasetRef struct {
	// Table is the table to read.
	Table TableRef
	// Columns are the declared descriptors to select, in order. The
	// returned dataset carries exactly these descriptors. Empty selects
	// every column with driver-derived descriptors.
	Columns []Column
	// Where is an optional SQL boolean expression filtering the rows
	// (a segment's stored predicate).
	Where string
}
