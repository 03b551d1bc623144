package fingerprint

import (
	"github.com/leapstack-labs/drift/pkg/core"
)

// genericReducer handles columns whose warehouse type has no dedicated
// family. It still reports presence statistics so the column participates
// in comparisons.
type genericReducer struct {
	count int
	nils  int
}

func newGenericReducer() *genericReducer {
	return &genericReducer{}
}

func (r *genericReducer) Step(v any) {
	r.count++
	if v == nil {
		r.nils++
	}
}

func (r *genericReducer) Complete() core.FeatureSet {
	return core.FeatureSet{
		"count":     r.count,
		"nil_count": r.nils,
		"nil_share": nilShare(r.nils, r.count),
	}
}
