package core

// ColumnFeatures is one constituent of a composite extraction: a column
// paired with its computed feature set.
type ColumnFeatures struct {
	Column   Column     `json:"column"`
	Features FeatureSet `json:"features"`
}

// Constituents holds per-column feature sets of a composite asset, in the
// dataset's column order. Order is load-bearing: comparison iterates it as
// stored and contributor ranking never re-sorts it.
type Constituents []ColumnFeatures

// Get returns the feature set for the named column.
func (c Constituents) Get(name string) (FeatureSet, bool) {
	for _, cf := range c {
		if cf.Column.Name == name {
			return cf.Features, true
		}
	}
	return nil, false
}

// Names returns the constituent column names in stored order.
func (c Constituents) Names() []string {
	names := make([]string, len(c))
	for i, cf := range c {
		names[i] = cf.Column.Name
	}
	return names
}

// Extraction is the uniform result envelope of extracting one asset.
type Extraction struct {
	// Features are the asset-level features. For composite assets this is
	// at minimum the asset's own references (table, segment, card); for
	// cards it also carries the dimension/metric relation features.
	Features FeatureSet `json:"features"`
	// Constituents are the per-column feature sets. Nil for column assets.
	Constituents Constituents `json:"constituents,omitempty"`
	// Sample is true iff sampling was requested by the cost policy AND the
	// retrieved row count equals the sample cap exactly.
	Sample bool `json:"sample"`
	// Dataset is the retrieved dataset. Set only for card assets, whose
	// raw result downstream rendering needs.
	Dataset *Dataset `json:"dataset,omitempty"`
}

// FeatureDifference is one feature's contribution as reported by the
// distance function, in the function's own order.
type FeatureDifference struct {
	Feature    string  `json:"feature"`
	Difference float64 `json:"difference"`
}

// Distance is the result of comparing two feature sets.
type Distance struct {
	// Distance is the overall distance in [0, 1].
	Distance float64 `json:"distance"`
	// Significant is true when the distance crosses the distance
	// function's significance threshold.
	Significant bool `json:"significant"`
	// TopContributors lists the features that drive the distance, in the
	// distance function's reported order.
	TopContributors []FeatureDifference `json:"top_contributors,omitempty"`
}

// FieldDistance is one field's distance within a composite comparison.
type FieldDistance struct {
	Field string `json:"field"`
	Distance
}

// Contributor is a single feature identified as significantly differing
// between the two compared assets.
type Contributor struct {
	// Feature is the feature name.
	Feature string `json:"feature"`
	// Field is the column the feature belongs to. Empty for comparisons
	// of column assets, where there is only one implicit field.
	Field string `json:"field,omitempty"`
	// Contribution scores the feature for composite comparisons:
	// sqrt(field distance) * feature difference.
	Contribution float64 `json:"contribution,omitempty"`
	// Difference is the raw feature difference for leaf comparisons.
	Difference float64 `json:"difference,omitempty"`
}

// ComparisonResult is the envelope of comparing two assets.
type ComparisonResult struct {
	// ID identifies this comparison run.
	ID string `json:"id"`
	// Constituents are the two extractions, in argument order.
	Constituents [2]*Extraction `json:"constituents"`
	// Fields holds the per-field distances for composite comparisons, in
	// the first extraction's constituent order. Nil for leaf comparisons.
	Fields []FieldDistance `json:"fields,omitempty"`
	// Overall is the single distance for leaf comparisons. Nil otherwise.
	Overall *Distance `json:"overall,omitempty"`
	// TopContributors are the ranked differing features, in
	// classification order.
	TopContributors []Contributor `json:"top_contributors"`
	// Sample is true if either side's extraction was sampled.
	Sample bool `json:"sample"`
	// Significant is true when any field distance is significant (or, for
	// leaf comparisons, when the overall distance is).
	Significant bool `json:"significant"`
}
