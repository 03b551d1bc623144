package extraction

import (
	"github.com/leapstack-labs/drift/pkg/core"
)

// slot binds one reducer to the column index it consumes.
type slot struct {
	col     core.Column
	idx     int
	reducer core.Reducer
}

// aggregateColumns fingerprints every eligible column of a dataset in a
// single traversal of its rows. Remapped columns and primary keys carry no
// signal and are skipped. The result preserves dataset column order.
func aggregateColumns(factory core.ReducerFactory, opts core.Options, ds *core.Dataset) core.Constituents {
	slots := make([]slot, 0, len(ds.Cols))
	for i, col := range ds.Cols {
		if col.Remapped || col.PrimaryKey {
			continue
		}
		slots = append(slots, slot{col: col, idx: i, reducer: factory.Column(opts, col)})
	}

	for _, row := range ds.Rows {
		for _, s := range slots {
			s.reducer.Step(row[s.idx])
		}
	}

	constituents := make(core.Constituents, len(slots))
	for i, s := range slots {
		constituents[i] = core.ColumnFeatures{Column: s.col, Features: s.reducer.Complete()}
	}
	return constituents
}

// reduceColumn folds the first cell of every row through one reducer.
// Used for column assets, whose datasets are a single projected column.
func reduceColumn(reducer core.Reducer, rows [][]any) core.FeatureSet {
	for _, row := range rows {
		reducer.Step(row[0])
	}
	return reducer.Complete()
}

// reducePair folds whole aligned rows through a pair reducer. Each row is a
// two-cell slice with the dimension at index 0 and the metric at index 1.
func reducePair(reducer core.Reducer, rows [][]any) core.FeatureSet {
	for _, row := range rows {
		reducer.Step(row)
	}
	return reducer.Complete()
}
