package sigtest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"powersim/domain/design"
	"powersim/ports"
)

// twoSidedTPValue converts a t statistic into a two-sided p-value
func twoSidedTPValue(t float64, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// OneSampleT tests whether the mean of one condition differs from Mu0.
// Condition == "" means "use every observation in the dataset".
type OneSampleT struct {
	Condition design.Condition
	Mu0       float64
}

// Name implements ports.SignificanceTest
func (t OneSampleT) Name() string {
	return "one_sample_t"
}

// PValue implements ports.SignificanceTest
func (t OneSampleT) PValue(ds design.Dataset) (float64, error) {
	var xs []float64
	if t.Condition == "" {
		xs = make([]float64, len(ds.Observations))
		for i, obs := range ds.Observations {
			xs[i] = obs.Value
		}
	} else {
		xs = ds.ValuesFor(t.Condition)
	}

	n := len(xs)
	if n < minGroupSize {
		return 0, degenerate(t.Name(), fmt.Sprintf("need at least %d observations, got %d", minGroupSize, n))
	}

	mean, variance := meanVariance(xs)
	if variance == 0 {
		return 0, degenerate(t.Name(), "zero sample variance")
	}

	stat := (mean - t.Mu0) / math.Sqrt(variance/float64(n))
	return twoSidedTPValue(stat, float64(n-1)), nil
}

// TwoSampleT is the classical pooled-variance unpaired t-test between the
// values observed under conditions A and B.
type TwoSampleT struct {
	A, B design.Condition
}

// Name implements ports.SignificanceTest
func (t TwoSampleT) Name() string {
	return "two_sample_t"
}

// PValue implements ports.SignificanceTest
func (t TwoSampleT) PValue(ds design.Dataset) (float64, error) {
	xs := ds.ValuesFor(t.A)
	ys := ds.ValuesFor(t.B)

	n1, n2 := len(xs), len(ys)
	if n1 < minGroupSize || n2 < minGroupSize {
		return 0, degenerate(t.Name(), fmt.Sprintf("need at least %d observations per group, got %d and %d", minGroupSize, n1, n2))
	}

	m1, v1 := meanVariance(xs)
	m2, v2 := meanVariance(ys)

	pooled := (float64(n1-1)*v1 + float64(n2-1)*v2) / float64(n1+n2-2)
	if pooled == 0 {
		return 0, degenerate(t.Name(), "zero pooled variance")
	}

	se := math.Sqrt(pooled * (1/float64(n1) + 1/float64(n2)))
	stat := (m1 - m2) / se
	return twoSidedTPValue(stat, float64(n1+n2-2)), nil
}

// PairedT first aggregates trial-level values to one mean per subject per
// condition, then runs a one-sample t-test on the per-subject differences.
// The aggregation is the test's contract, not the dataset's.
type PairedT struct {
	A, B design.Condition
}

// Name implements ports.SignificanceTest
func (t PairedT) Name() string {
	return "paired_t"
}

// PValue implements ports.SignificanceTest
func (t PairedT) PValue(ds design.Dataset) (float64, error) {
	diffs := pairedDifferences(ds, t.A, t.B)

	n := len(diffs)
	if n < minGroupSize {
		return 0, degenerate(t.Name(), fmt.Sprintf("need at least %d paired subjects, got %d", minGroupSize, n))
	}

	mean, variance := meanVariance(diffs)
	if variance == 0 {
		return 0, degenerate(t.Name(), "zero variance of paired differences")
	}

	stat := mean / math.Sqrt(variance/float64(n))
	return twoSidedTPValue(stat, float64(n-1)), nil
}

var (
	_ ports.SignificanceTest = OneSampleT{}
	_ ports.SignificanceTest = TwoSampleT{}
	_ ports.SignificanceTest = PairedT{}
)
