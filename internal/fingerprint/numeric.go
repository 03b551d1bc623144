package fingerprint

import (
	"math"

	"github.com/leapstack-labs/drift/pkg/core"
)

// numericReducer accumulates summary statistics over a numeric column.
// Mean and standard deviation use Welford's online algorithm so a single
// pass suffices.
type numericReducer struct {
	count int
	nils  int

	n    int
	min  float64
	max  float64
	sum  float64
	mean float64
	m2   float64
}

func newNumericReducer() *numericReducer {
	return &numericReducer{min: math.Inf(1), max: math.Inf(-1)}
}

func (r *numericReducer) Step(v any) {
	r.count++
	if v == nil {
		r.nils++
		return
	}
	f, ok := asFloat(v)
	if !ok {
		return
	}

	r.n++
	if f < r.min {
		r.min = f
	}
	if f > r.max {
		r.max = f
	}
	r.sum += f

	delta := f - r.mean
	r.mean += delta / float64(r.n)
	r.m2 += delta * (f - r.mean)
}

func (r *numericReducer) Complete() core.FeatureSet {
	fs := core.FeatureSet{
		"count":     r.count,
		"nil_count": r.nils,
		"nil_share": nilShare(r.nils, r.count),
	}
	if r.n > 0 {
		fs["min"] = r.min
		fs["max"] = r.max
		fs["sum"] = r.sum
		fs["mean"] = r.mean
	}
	if r.n > 1 {
		fs["sd"] = math.Sqrt(r.m2 / float64(r.n-1))
	}
	return fs
}

// nilShare is the fraction of nil cells, 0 for empty columns.
func nilShare(nils, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(nils) / float64(count)
}
