// Package comparison measures how far apart two asset fingerprints are and
// ranks the features that drive the difference.
package comparison

import (
	"math"
	"sort"
	"time"

	"github.com/leapstack-labs/drift/pkg/core"
)

// significanceThreshold is the distance above which a difference counts as
// significant.
const significanceThreshold = 0.2

// featureDistance compares two feature sets over their shared feature names.
// Each comparable pair contributes a difference in [0, 1]: numbers by
// relative difference, booleans and strings by equality. Features missing on
// either side or of incomparable types are skipped. The distance is the mean
// of the differences; contributors are the nonzero differences sorted by
// magnitude, largest first, ties broken by feature name.
func featureDistance(a, b core.FeatureSet) core.Distance {
	var total float64
	var compared int
	var contributors []core.FeatureDifference

	for name, av := range a {
		bv, ok := b[name]
		if !ok {
			continue
		}
		diff, ok := valueDifference(av, bv)
		if !ok {
			continue
		}
		total += diff
		compared++
		if diff > 0 {
			contributors = append(contributors, core.FeatureDifference{Feature: name, Difference: diff})
		}
	}

	if compared == 0 {
		return core.Distance{}
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		if contributors[i].Difference != contributors[j].Difference {
			return contributors[i].Difference > contributors[j].Difference
		}
		return contributors[i].Feature < contributors[j].Feature
	})

	d := total / float64(compared)
	return core.Distance{
		Distance:        d,
		Significant:     d > significanceThreshold,
		TopContributors: contributors,
	}
}

// valueDifference scores the difference between two feature values. The
// second return is false when the pair is not comparable.
func valueDifference(a, b any) (float64, bool) {
	if af, ok := comparableNumber(a); ok {
		bf, ok := comparableNumber(b)
		if !ok {
			return 0, false
		}
		return relativeDifference(af, bf), true
	}

	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return equalityDifference(av == bv), true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return equalityDifference(av == bv), true
	default:
		return 0, false
	}
}

// comparableNumber coerces numeric feature values onto a shared axis.
// Reducers emit ints and float64s; temporal range features are timestamps
// and compare on Unix seconds.
func comparableNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case time.Time:
		return float64(n.Unix()), true
	default:
		return 0, false
	}
}

// relativeDifference is |a-b| normalized by the larger magnitude, 0 when
// both are 0.
func relativeDifference(a, b float64) float64 {
	if a == b {
		return 0
	}
	den := math.Max(math.Abs(a), math.Abs(b))
	if den == 0 {
		return 0
	}
	return math.Abs(a-b) / den
}

func equalityDifference(equal bool) float64 {
	if equal {
		return 0
	}
	return 1
}
