package core

// FeatureSet maps feature names to computed values. Values are opaque to
// the engine: numbers, strings, timestamps, or references such as TableRef.
type FeatureSet map[string]any

// Reducer is a stateful fold over one column's cells. One instance is built
// per column; instances share no state. Step is called once per row with the
// cell at the reducer's bound index (or, for pair reducers, with the aligned
// two-cell row), and Complete finalizes the accumulated state.
type Reducer interface {
	Step(v any)
	Complete() FeatureSet
}

// ReducerFactory builds reducers for columns and for dimension/metric pairs.
// Implementations choose the feature formulas; the engine only wires cells
// to reducers.
type ReducerFactory interface {
	// Column builds a reducer for a single column. Step receives one cell.
	Column(opts Options, col Column) Reducer
	// Pair builds a reducer summarizing the relationship between a
	// dimension column and a metric column. Step receives the aligned row
	// ([]any with the dimension cell at index 0 and the metric at 1).
	Pair(opts Options, dim, metric Column) Reducer
}
