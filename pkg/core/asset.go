package core

// AssetKind discriminates the analyzable asset variants.
type AssetKind string

// Asset kind constants.
const (
	AssetColumn  AssetKind = "column"
	AssetTable   AssetKind = "table"
	AssetCard    AssetKind = "card"
	AssetSegment AssetKind = "segment"
)

// Asset is an analyzable entity: a column, a table, a saved card query, or
// a filtered segment. Each variant carries enough of a reference to retrieve
// its dataset from the warehouse. The set of implementations is closed;
// dispatch is by type switch.
type Asset interface {
	// Kind returns the variant tag.
	Kind() AssetKind
	// Name returns a human-readable identity for logs and rendering.
	Name() string
}

// ColumnAsset is a single column of a table.
type ColumnAsset struct {
	// Table is the owning table.
	Table TableRef
	// Column is the column's declared descriptor.
	Column Column
}

// Kind implements Asset.
func (a ColumnAsset) Kind() AssetKind { return AssetColumn }

// Name implements Asset.
func (a ColumnAsset) Name() string { return a.Table.String() + "." + a.Column.Name }

// TableAsset is a whole warehouse table.
type TableAsset struct {
	// Table is the table reference.
	Table TableRef
	// Columns are the declared column descriptors (roles and exclusion
	// flags come from the catalog). Empty means "derive from the driver".
	Columns []Column
}

// Kind implements Asset.
func (a TableAsset) Kind() AssetKind { return AssetTable }

// Name implements Asset.
func (a TableAsset) Name() string { return a.Table.String() }

// SegmentAsset is a table filtered by a stored predicate.
type SegmentAsset struct {
	// SegmentName is the segment's catalog name.
	SegmentName string
	// Table is the table the predicate filters.
	Table TableRef
	// Columns are the declared column descriptors of the table.
	Columns []Column
	// Predicate is a SQL boolean expression applied at retrieval time.
	Predicate string
}

// Kind implements Asset.
func (a SegmentAsset) Kind() AssetKind { return AssetSegment }

// Name implements Asset.
func (a SegmentAsset) Name() string { return a.SegmentName }

// CardAsset is a saved (or ad hoc) query with optional visualization hints
// naming its primary metric and dimension columns.
type CardAsset struct {
	// CardName is the card's catalog name.
	CardName string
	// Table is the card's source table.
	Table TableRef
	// Query is the card's query definition.
	Query QueryDef
}

// Kind implements Asset.
func (a CardAsset) Kind() AssetKind { return AssetCard }

// Name implements Asset.
func (a CardAsset) Name() string { return a.CardName }

// QueryDef is an executable query definition.
type QueryDef struct {
	// SQL is the native query text.
	SQL string `json:"sql" yaml:"sql"`
	// Metrics are declared metric column names, most significant first.
	Metrics []string `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	// Dimensions are declared dimension column names, most significant first.
	Dimensions []string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// HasHints reports whether the definition declares any visualization hints.
func (q QueryDef) HasHints() bool {
	return len(q.Metrics) > 0 || len(q.Dimensions) > 0
}
