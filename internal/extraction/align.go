package extraction

import (
	"fmt"

	"github.com/leapstack-labs/drift/pkg/core"
)

// FieldNotInDatasetError is returned when a target field of an alignment has
// no equal column descriptor in the dataset.
type FieldNotInDatasetError struct {
	Field core.Column
}

func (e *FieldNotInDatasetError) Error() string {
	return fmt.Sprintf("field %q not present in dataset columns", e.Field.Name)
}

// alignFields projects rows down to the two target fields.
//
// When the dataset's first two columns already equal the target pair, the
// rows are returned as-is, whatever their width. Otherwise each target field
// is resolved to the index of the first equal column descriptor and the rows
// are projected to two cells each, in one pass, preserving row order.
func alignFields(fields [2]core.Column, ds *core.Dataset) ([][]any, error) {
	if len(ds.Cols) >= 2 && ds.Cols[0] == fields[0] && ds.Cols[1] == fields[1] {
		return ds.Rows, nil
	}

	var idx [2]int
	for i, field := range fields {
		j := ds.ColumnIndex(field)
		if j < 0 {
			return nil, &FieldNotInDatasetError{Field: field}
		}
		idx[i] = j
	}

	aligned := make([][]any, len(ds.Rows))
	for i, row := range ds.Rows {
		aligned[i] = []any{row[idx[0]], row[idx[1]]}
	}
	return aligned, nil
}
