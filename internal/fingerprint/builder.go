// Package fingerprint computes statistical feature sets for dataset columns.
// It provides the reducer factory used by the extraction engine: streaming,
// nil-tolerant accumulators keyed by the column's warehouse type family.
package fingerprint

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/drift/pkg/core"
)

// family groups warehouse types into reducer families.
type family int

const (
	familyUnknown family = iota
	familyNumeric
	familyText
	familyBool
	familyTemporal
)

// Builder implements core.ReducerFactory.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a reducer factory. If logger is nil, a discard logger
// is used.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{logger: logger}
}

// Column builds a streaming reducer for a single column, chosen by the
// column's type family.
func (b *Builder) Column(opts core.Options, col core.Column) core.Reducer {
	switch typeFamily(col.Type) {
	case familyNumeric:
		return newNumericReducer()
	case familyText:
		return newTextReducer(distinctCap(opts.MaxCost.Computation))
	case familyBool:
		return newBoolReducer()
	case familyTemporal:
		return newTemporalReducer()
	default:
		b.logger.Debug("no reducer family for column type", "column", col.Name, "type", col.Type)
		return newGenericReducer()
	}
}

// Pair builds a reducer summarizing the relationship between a dimension
// and a metric column.
func (b *Builder) Pair(opts core.Options, dim, metric core.Column) core.Reducer {
	return newPairReducer(opts.Query)
}

// distinctCap bounds the text reducer's distinct-value tracking. The linear
// computation level keeps the accumulator small; unbounded raises the cap
// but still bounds memory. The emitted feature keys are identical either
// way so fingerprints stay comparable across levels.
func distinctCap(level core.CostLevel) int {
	if level == core.CostComputationUnbounded {
		return 10000
	}
	return 256
}

// typeFamily maps a warehouse type name to a reducer family. Matching is
// prefix-based so parameterized types like DECIMAL(10,2) resolve too.
func typeFamily(typ string) family {
	t := strings.ToUpper(strings.TrimSpace(typ))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}

	switch t {
	case "TINYINT", "SMALLINT", "INTEGER", "INT", "INT2", "INT4", "INT8",
		"BIGINT", "HUGEINT", "UTINYINT", "USMALLINT", "UINTEGER", "UBIGINT",
		"DECIMAL", "NUMERIC", "REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE",
		"DOUBLE PRECISION", "SERIAL", "BIGSERIAL":
		return familyNumeric
	case "VARCHAR", "CHARACTER VARYING", "CHAR", "BPCHAR", "TEXT", "STRING",
		"NAME", "UUID":
		return familyText
	case "BOOL", "BOOLEAN":
		return familyBool
	case "DATE", "TIME", "DATETIME", "TIMESTAMP", "TIMESTAMPTZ",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE":
		return familyTemporal
	default:
		return familyUnknown
	}
}
