package core

// Role marks the function a column plays in a card's result set.
type Role string

// Role constants.
const (
	// RoleNone is the default for plain data columns.
	RoleNone Role = ""
	// RoleAggregation marks a column produced by an aggregation (a metric).
	RoleAggregation Role = "aggregation"
	// RoleBreakout marks a grouping column (a dimension).
	RoleBreakout Role = "breakout"
)

// Column describes one column of a dataset.
//
// Column is a comparable value type: field alignment and lookups rely on
// struct equality, so it must never grow slice, map, or pointer fields.
type Column struct {
	// Name is the column name as it appears in the dataset.
	Name string `json:"name" yaml:"name"`
	// Type is the warehouse data type (e.g. "BIGINT", "VARCHAR").
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Role is the column's role in a card result, if any.
	Role Role `json:"role,omitempty" yaml:"role,omitempty"`
	// Remapped is true for columns whose values are display remappings
	// of another column. Remapped columns carry no signal of their own
	// and are excluded from fingerprinting.
	Remapped bool `json:"remapped,omitempty" yaml:"remapped,omitempty"`
	// PrimaryKey is true for primary key columns, which are likewise
	// excluded from fingerprinting.
	PrimaryKey bool `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
}

// Dataset is an ordered set of columns plus rows aligned positionally with
// them. Retrieval collaborators guarantee that every row has exactly
// len(Cols) cells; the engine does not re-validate this.
type Dataset struct {
	Cols []Column `json:"cols"`
	Rows [][]any  `json:"rows"`
}

// ColumnIndex returns the index of the first column equal to col, or -1.
// First match wins on ties so that lookups stay consistent with the
// dataset's declared column order.
func (d *Dataset) ColumnIndex(col Column) int {
	for i, c := range d.Cols {
		if c == col {
			return i
		}
	}
	return -1
}

// TableRef identifies a table in the connected warehouse.
type TableRef struct {
	// Schema is the schema name; empty means the source's default schema.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
	// Name is the table name.
	Name string `json:"name" yaml:"name"`
}

// String returns "schema.name", or just "name" when no schema is set.
func (r TableRef) String() string {
	if r.Schema == "" {
		return r.Name
	}
	return r.Schema + "." + r.Name
}
