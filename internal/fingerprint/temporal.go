package fingerprint

import (
	"time"

	"github.com/leapstack-labs/drift/pkg/core"
)

// temporalReducer tracks the observed range of a date or timestamp column.
type temporalReducer struct {
	count int
	nils  int

	n        int
	earliest time.Time
	latest   time.Time
}

func newTemporalReducer() *temporalReducer {
	return &temporalReducer{}
}

func (r *temporalReducer) Step(v any) {
	r.count++
	if v == nil {
		r.nils++
		return
	}
	t, ok := asTime(v)
	if !ok {
		return
	}

	r.n++
	if r.n == 1 || t.Before(r.earliest) {
		r.earliest = t
	}
	if r.n == 1 || t.After(r.latest) {
		r.latest = t
	}
}

func (r *temporalReducer) Complete() core.FeatureSet {
	fs := core.FeatureSet{
		"count":     r.count,
		"nil_count": r.nils,
		"nil_share": nilShare(r.nils, r.count),
	}
	if r.n > 0 {
		fs["earliest"] = r.earliest
		fs["latest"] = r.latest
	}
	return fs
}
