package fingerprint

import (
	"math"

	"github.com/leapstack-labs/drift/pkg/core"
)

// pairReducer summarizes the relationship between a dimension and a metric.
// Each Step receives an aligned two-cell row, dimension first. For numeric
// axes it accumulates the moments needed for Pearson correlation and a
// least-squares fit; temporal dimensions are regressed on Unix seconds.
type pairReducer struct {
	query *core.QueryDef

	rows  int
	n     int
	sumX  float64
	sumY  float64
	sumXY float64
	sumXX float64
	sumYY float64
}

func newPairReducer(query *core.QueryDef) *pairReducer {
	return &pairReducer{query: query}
}

func (r *pairReducer) Step(v any) {
	r.rows++

	row, ok := v.([]any)
	if !ok || len(row) < 2 {
		return
	}
	x, okX := numericize(row[0])
	y, okY := numericize(row[1])
	if !okX || !okY {
		return
	}

	r.n++
	r.sumX += x
	r.sumY += y
	r.sumXY += x * y
	r.sumXX += x * x
	r.sumYY += y * y
}

func (r *pairReducer) Complete() core.FeatureSet {
	fs := core.FeatureSet{"row_count": r.rows}
	if r.query != nil {
		fs["query"] = *r.query
	}

	if r.n < 2 {
		return fs
	}

	n := float64(r.n)
	covXY := n*r.sumXY - r.sumX*r.sumY
	varX := n*r.sumXX - r.sumX*r.sumX
	varY := n*r.sumYY - r.sumY*r.sumY

	if varX > 0 {
		slope := covXY / varX
		fs["slope"] = slope
		fs["intercept"] = (r.sumY - slope*r.sumX) / n
	}
	if varX > 0 && varY > 0 {
		fs["correlation"] = covXY / math.Sqrt(varX*varY)
	}
	return fs
}
