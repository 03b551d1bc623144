package comparison

import (
	"math"

	"github.com/leapstack-labs/drift/pkg/core"
)

// headTails classifies xs with the head/tails natural-breaks method: keep
// the members scoring strictly above the mean, then reclassify the head
// until it stops shrinking or nothing stands out. Input order is preserved;
// the refined head is returned.
func headTails[T any](xs []T, score func(T) float64) []T {
	cur := xs
	for {
		if len(cur) <= 1 {
			return cur
		}

		var total float64
		for _, x := range cur {
			total += score(x)
		}
		mean := total / float64(len(cur))

		var head []T
		for _, x := range cur {
			if score(x) > mean {
				head = append(head, x)
			}
		}
		if len(head) == 0 || len(head) == len(cur) {
			return cur
		}
		cur = head
	}
}

// rankComposite picks the features driving a per-field comparison apart.
// Fields are classified by distance; every surviving field's contributors
// are flattened with a contribution score that weighs the feature's own
// difference by the field's distance, and the flattened set is classified
// again. Order follows classification and flattening, never a re-sort.
func rankComposite(fields []core.FieldDistance) []core.Contributor {
	classified := headTails(fields, func(fd core.FieldDistance) float64 { return fd.Distance.Distance })

	var flattened []core.Contributor
	for _, fd := range classified {
		for _, fc := range fd.TopContributors {
			flattened = append(flattened, core.Contributor{
				Feature:      fc.Feature,
				Field:        fd.Field,
				Contribution: math.Sqrt(fd.Distance.Distance) * fc.Difference,
			})
		}
	}

	return headTails(flattened, func(c core.Contributor) float64 { return c.Contribution })
}

// rankLeaf passes a single distance result's contributors through in their
// reported order.
func rankLeaf(d core.Distance) []core.Contributor {
	contributors := make([]core.Contributor, len(d.TopContributors))
	for i, fc := range d.TopContributors {
		contributors[i] = core.Contributor{Feature: fc.Feature, Difference: fc.Difference}
	}
	return contributors
}
