package fingerprint

import (
	"github.com/leapstack-labs/drift/pkg/core"
)

// boolReducer accumulates the true share of a boolean column.
type boolReducer struct {
	count int
	nils  int
	n     int
	trues int
}

func newBoolReducer() *boolReducer {
	return &boolReducer{}
}

func (r *boolReducer) Step(v any) {
	r.count++
	if v == nil {
		r.nils++
		return
	}
	b, ok := asBool(v)
	if !ok {
		return
	}
	r.n++
	if b {
		r.trues++
	}
}

func (r *boolReducer) Complete() core.FeatureSet {
	fs := core.FeatureSet{
		"count":      r.count,
		"nil_count":  r.nils,
		"nil_share":  nilShare(r.nils, r.count),
		"true_count": r.trues,
	}
	if r.n > 0 {
		fs["true_share"] = float64(r.trues) / float64(r.n)
	}
	return fs
}
