// Package extraction turns analytical assets into statistical fingerprints.
// It dispatches on asset kind, retrieves the asset's dataset through a
// warehouse source, and folds the rows through reducers in a single pass.
package extraction

import (
	"github.com/leapstack-labs/drift/pkg/core"
)

// DefaultSampleCap is the row cap applied when sampling is requested.
const DefaultSampleCap = 10000

// Policy decides how much data an extraction retrieves. Level semantics
// live here; the rest of the engine treats cost levels as opaque tags.
type Policy struct {
	// SampleCap is the retrieval limit applied when sampling.
	SampleCap int
}

// NewPolicy returns a policy with the given sample cap, or the default cap
// when n is not positive.
func NewPolicy(n int) Policy {
	if n <= 0 {
		n = DefaultSampleCap
	}
	return Policy{SampleCap: n}
}

// ShouldSample reports whether the cost bound requests sampled retrieval.
// Only the "sample" query level caps retrieval; full-scan and joins read
// everything.
func (p Policy) ShouldSample(maxCost core.MaxCost) bool {
	return maxCost.Query == core.CostQuerySample
}

// QueryOptions translates a cost bound into retrieval options: a limit of
// SampleCap when sampling, otherwise no constraints.
func (p Policy) QueryOptions(maxCost core.MaxCost) core.QueryOptions {
	if p.ShouldSample(maxCost) {
		return core.QueryOptions{Limit: p.SampleCap}
	}
	return core.QueryOptions{}
}

// Sampled reports whether a retrieved dataset must be flagged as a sample:
// sampling was requested and the row count hit the cap exactly. A dataset
// smaller than the cap is complete even under a sampling bound.
func (p Policy) Sampled(maxCost core.MaxCost, rowCount int) bool {
	return p.ShouldSample(maxCost) && rowCount == p.SampleCap
}
