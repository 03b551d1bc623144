package core

// CostLevel grades how much work a caller is willing to spend. Level
// semantics are owned by the extraction cost policy; the rest of the engine
// treats them as opaque tags.
type CostLevel string

// Query cost levels.
const (
	// CostQuerySample caps dataset retrieval at the policy's sample cap.
	CostQuerySample CostLevel = "sample"
	// CostQueryFullScan allows unbounded single-table scans.
	CostQueryFullScan CostLevel = "full-scan"
	// CostQueryJoins additionally allows queries that join.
	CostQueryJoins CostLevel = "joins"
)

// Computation cost levels.
const (
	// CostComputationLinear restricts extractors to cheap accumulators.
	CostComputationLinear CostLevel = "linear"
	// CostComputationUnbounded lifts extractor-side limits.
	CostComputationUnbounded CostLevel = "unbounded"
)

// MaxCost bounds one extraction or comparison run.
type MaxCost struct {
	// Computation bounds extractor-side work.
	Computation CostLevel `json:"computation,omitempty" koanf:"computation"`
	// Query bounds warehouse-side work.
	Query CostLevel `json:"query,omitempty" koanf:"query"`
}

// Options travel with every extraction call.
type Options struct {
	// MaxCost bounds the run. The zero value means "no sampling, linear
	// computation" and is interpreted by the cost policy.
	MaxCost MaxCost
	// Query is the definition of the card being extracted, if any. The
	// dispatcher sets it before building pair reducers so extractors can
	// fold the query identity into relation features.
	Query *QueryDef
}
