package fingerprint

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/drift/pkg/core"
)

// featureTitles maps feature names to display titles where the mechanical
// title casing would read poorly.
var featureTitles = map[string]string{
	"nil_count":       "Nil Count",
	"nil_share":       "Share of Nil Values",
	"min":             "Minimum",
	"max":             "Maximum",
	"sd":              "Standard Deviation",
	"distinct_capped": "Distinct Count Capped",
	"min_length":      "Shortest Length",
	"max_length":      "Longest Length",
	"avg_length":      "Average Length",
	"true_share":      "Share of True Values",
}

var titleCaser = cases.Title(language.English)

// FeatureTitle returns a human-readable title for a feature name.
func FeatureTitle(name string) string {
	if title, ok := featureTitles[name]; ok {
		return title
	}
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// Describe maps every feature name appearing in an extraction, top-level and
// per constituent, to its display title. Presentation layers attach the
// result alongside the raw fingerprint; the engine itself never needs it.
func Describe(ext *core.Extraction) map[string]string {
	titles := make(map[string]string)
	for name := range ext.Features {
		titles[name] = FeatureTitle(name)
	}
	for _, cf := range ext.Constituents {
		for name := range cf.Features {
			titles[name] = FeatureTitle(name)
		}
	}
	return titles
}

// RoundDecimals returns a copy of the extraction with every float feature
// rounded to the given number of decimal places. The raw dataset, if any,
// is shared, not copied.
func RoundDecimals(ext *core.Extraction, places int) *core.Extraction {
	out := &core.Extraction{
		Features: roundFeatureSet(ext.Features, places),
		Sample:   ext.Sample,
		Dataset:  ext.Dataset,
	}
	if ext.Constituents != nil {
		out.Constituents = make(core.Constituents, len(ext.Constituents))
		for i, cf := range ext.Constituents {
			out.Constituents[i] = core.ColumnFeatures{
				Column:   cf.Column,
				Features: roundFeatureSet(cf.Features, places),
			}
		}
	}
	return out
}

func roundFeatureSet(fs core.FeatureSet, places int) core.FeatureSet {
	if fs == nil {
		return nil
	}
	out := make(core.FeatureSet, len(fs))
	for name, v := range fs {
		out[name] = roundValue(v, places)
	}
	return out
}

func roundValue(v any, places int) any {
	switch val := v.(type) {
	case float64:
		pow := math.Pow(10, float64(places))
		return math.Round(val*pow) / pow
	case core.FeatureSet:
		return roundFeatureSet(val, places)
	default:
		return v
	}
}
