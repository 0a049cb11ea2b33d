// Package sigtest adapts classical significance tests to the dataset shape
// produced by the simulators. Each test reduces one dataset to a two-sided
// p-value; exact CDFs come from gonum's distuv.
package sigtest

import (
	"gonum.org/v1/gonum/stat"

	"powersim/domain/core"
	"powersim/domain/design"
)

const minGroupSize = 2

// meanVariance returns the sample mean and unbiased sample variance
func meanVariance(xs []float64) (float64, float64) {
	m := stat.Mean(xs, nil)
	v := stat.Variance(xs, nil)
	return m, v
}

// pairedDifferences aggregates trial-level values to one mean per subject per
// condition, then returns the per-subject A−B differences for subjects
// present under both conditions, in ascending subject order.
func pairedDifferences(ds design.Dataset, a, b design.Condition) []float64 {
	subjA, meansA := ds.SubjectMeans(a)
	subjB, meansB := ds.SubjectMeans(b)

	byB := make(map[int]float64, len(subjB))
	for i, s := range subjB {
		byB[s] = meansB[i]
	}

	var diffs []float64
	for i, s := range subjA {
		if mb, ok := byB[s]; ok {
			diffs = append(diffs, meansA[i]-mb)
		}
	}
	return diffs
}

func degenerate(test string, reason string) error {
	return core.NewDegenerateSampleError(test, reason)
}
