package comparison

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leapstack-labs/drift/pkg/core"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFeatureDistance_Identical(t *testing.T) {
	fs := core.FeatureSet{"count": 100, "mean": 2.5, "label": "x", "flag": true}

	d := featureDistance(fs, fs)

	if d.Distance != 0 {
		t.Errorf("distance = %v, want 0", d.Distance)
	}
	if d.Significant {
		t.Error("identical sets must not be significant")
	}
	if len(d.TopContributors) != 0 {
		t.Errorf("contributors = %v, want none", d.TopContributors)
	}
}

func TestFeatureDistance_RelativeDifference(t *testing.T) {
	a := core.FeatureSet{"mean": 10.0}
	b := core.FeatureSet{"mean": 5.0}

	d := featureDistance(a, b)

	if !floatEq(d.Distance, 0.5) {
		t.Errorf("distance = %v, want 0.5", d.Distance)
	}
	if !d.Significant {
		t.Error("0.5 should be significant")
	}
	want := []core.FeatureDifference{{Feature: "mean", Difference: 0.5}}
	if !reflect.DeepEqual(d.TopContributors, want) {
		t.Errorf("contributors = %v, want %v", d.TopContributors, want)
	}
}

func TestFeatureDistance_MeanOverShared(t *testing.T) {
	a := core.FeatureSet{"mean": 10.0, "count": 100}
	b := core.FeatureSet{"mean": 5.0, "count": 100}

	d := featureDistance(a, b)

	// (0.5 + 0) / 2
	if !floatEq(d.Distance, 0.25) {
		t.Errorf("distance = %v, want 0.25", d.Distance)
	}
}

func TestFeatureDistance_SkipsMissingAndIncomparable(t *testing.T) {
	a := core.FeatureSet{
		"mean":  10.0,
		"only":  1.0,
		"table": core.TableRef{Name: "orders"},
	}
	b := core.FeatureSet{
		"mean":  10.0,
		"table": core.TableRef{Name: "other"},
	}

	d := featureDistance(a, b)

	// Only mean is compared; TableRef values are not comparable and "only"
	// is missing on the right.
	if d.Distance != 0 {
		t.Errorf("distance = %v, want 0", d.Distance)
	}
}

func TestFeatureDistance_NothingShared(t *testing.T) {
	d := featureDistance(core.FeatureSet{"a": 1.0}, core.FeatureSet{"b": 1.0})

	if d.Distance != 0 || d.Significant || d.TopContributors != nil {
		t.Errorf("empty comparison = %+v, want zero value", d)
	}
}

func TestFeatureDistance_EqualityTypes(t *testing.T) {
	a := core.FeatureSet{"flag": true, "label": "paid"}
	b := core.FeatureSet{"flag": false, "label": "paid"}

	d := featureDistance(a, b)

	// flag differs (1), label matches (0).
	if !floatEq(d.Distance, 0.5) {
		t.Errorf("distance = %v, want 0.5", d.Distance)
	}
}

func TestFeatureDistance_Timestamps(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := core.FeatureSet{"earliest": t0}
	b := core.FeatureSet{"earliest": t0.Add(time.Hour)}

	d := featureDistance(a, b)

	if d.Distance <= 0 {
		t.Errorf("distance = %v, want > 0 for shifted timestamps", d.Distance)
	}
	if d.Distance > 0.001 {
		t.Errorf("distance = %v, want tiny relative shift", d.Distance)
	}
}

func TestFeatureDistance_MixedNumericWidths(t *testing.T) {
	// Reducers emit ints for counts; the other side may carry float64
	// after a JSON round trip.
	a := core.FeatureSet{"count": 100}
	b := core.FeatureSet{"count": 100.0}

	d := featureDistance(a, b)

	if d.Distance != 0 {
		t.Errorf("distance = %v, want 0 across numeric widths", d.Distance)
	}
}

func TestFeatureDistance_ContributorOrder(t *testing.T) {
	a := core.FeatureSet{"p": 1.0, "b": 10.0, "a": 0.0, "z": 3.0}
	b := core.FeatureSet{"p": 2.0, "b": 5.0, "a": 4.0, "z": 6.0}

	d := featureDistance(a, b)

	// p: 0.5, b: 0.5, a: 1.0, z: 0.5. Sorted by difference descending,
	// then by name: a, then b/p/z alphabetically.
	want := []string{"a", "b", "p", "z"}
	var got []string
	for _, fc := range d.TopContributors {
		got = append(got, fc.Feature)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("contributor order = %v, want %v", got, want)
	}
}

func TestFeatureDistance_ThresholdBoundary(t *testing.T) {
	// Distance of exactly the threshold is not significant.
	a := core.FeatureSet{"v": 1.0}
	b := core.FeatureSet{"v": 0.8}

	d := featureDistance(a, b)

	if !floatEq(d.Distance, 0.2) {
		t.Fatalf("distance = %v, want 0.2", d.Distance)
	}
	if d.Significant {
		t.Error("distance equal to the threshold must not be significant")
	}
}

func TestRelativeDifference_BothZero(t *testing.T) {
	if got := relativeDifference(0, 0); got != 0 {
		t.Errorf("relativeDifference(0, 0) = %v, want 0", got)
	}
}
