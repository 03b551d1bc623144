package fingerprint

import (
	"github.com/leapstack-labs/drift/pkg/core"
)

// textReducer accumulates summary statistics over a string column. Distinct
// tracking is capped so wide columns cannot blow up memory; the cap comes
// from the computation cost level.
type textReducer struct {
	cap   int
	count int
	nils  int

	n        int
	distinct map[string]struct{}
	capped   bool
	minLen   int
	maxLen   int
	totalLen int
}

func newTextReducer(cap int) *textReducer {
	return &textReducer{cap: cap, distinct: make(map[string]struct{})}
}

func (r *textReducer) Step(v any) {
	r.count++
	if v == nil {
		r.nils++
		return
	}
	s, ok := asString(v)
	if !ok {
		return
	}

	r.n++
	if len(r.distinct) < r.cap {
		r.distinct[s] = struct{}{}
	} else if _, seen := r.distinct[s]; !seen {
		r.capped = true
	}

	l := len(s)
	if r.n == 1 || l < r.minLen {
		r.minLen = l
	}
	if l > r.maxLen {
		r.maxLen = l
	}
	r.totalLen += l
}

func (r *textReducer) Complete() core.FeatureSet {
	fs := core.FeatureSet{
		"count":           r.count,
		"nil_count":       r.nils,
		"nil_share":       nilShare(r.nils, r.count),
		"distinct_count":  len(r.distinct),
		"distinct_capped": r.capped,
	}
	if r.n > 0 {
		fs["min_length"] = r.minLen
		fs["max_length"] = r.maxLen
		fs["avg_length"] = float64(r.totalLen) / float64(r.n)
	}
	return fs
}
