package reference

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"powersim/domain/core"
)

func validateCommon(sd float64, n int, alpha float64) error {
	if sd <= 0 {
		return core.NewParameterError("sd", "must be > 0")
	}
	if n < 2 {
		return core.NewParameterError("n", "must be >= 2")
	}
	if alpha <= 0 || alpha >= 1 {
		return core.NewParameterError("alpha", "must be in (0,1)")
	}
	return nil
}

// OneSampleTTestPower returns the exact power of the two-sided one-sample
// t-test for a true mean shift delta, population sd, and n observations.
func OneSampleTTestPower(delta, sd float64, n int, alpha float64) (float64, error) {
	if err := validateCommon(sd, n, alpha); err != nil {
		return 0, err
	}
	df := float64(n - 1)
	crit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)
	ncp := delta / sd * math.Sqrt(float64(n))
	return noncentralTTwoSidedPower(crit, df, ncp), nil
}

// PairedTTestPower is the one-sample power applied to the distribution of
// per-subject differences: delta is the mean difference and sdDiff its SD.
func PairedTTestPower(delta, sdDiff float64, n int, alpha float64) (float64, error) {
	return OneSampleTTestPower(delta, sdDiff, n, alpha)
}

// TwoSampleTTestPower returns the exact power of the two-sided pooled
// two-sample t-test with nPerGroup observations in each group and a common
// population sd.
func TwoSampleTTestPower(delta, sd float64, nPerGroup int, alpha float64) (float64, error) {
	if err := validateCommon(sd, nPerGroup, alpha); err != nil {
		return 0, err
	}
	df := float64(2*nPerGroup - 2)
	crit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - alpha/2)
	ncp := delta / sd * math.Sqrt(float64(nPerGroup)/2)
	return noncentralTTwoSidedPower(crit, df, ncp), nil
}

// OneWayANOVAPower returns the power of the balanced one-way fixed-effects
// F-test with nPerGroup observations per group, the given true group means,
// and a common within-group sd. With unequal true variances callers feed an
// averaged variance; the result is then an approximation.
func OneWayANOVAPower(means []float64, sd float64, nPerGroup int, alpha float64) (float64, error) {
	if len(means) < 2 {
		return 0, core.NewParameterError("means", "need at least 2 groups")
	}
	if err := validateCommon(sd, nPerGroup, alpha); err != nil {
		return 0, err
	}

	k := float64(len(means))
	var grand float64
	for _, m := range means {
		grand += m
	}
	grand /= k

	var ss float64
	for _, m := range means {
		ss += (m - grand) * (m - grand)
	}

	lambda := float64(nPerGroup) * ss / (sd * sd)
	df1 := k - 1
	df2 := k * float64(nPerGroup-1)
	crit := distuv.F{D1: df1, D2: df2}.Quantile(1 - alpha)
	return 1 - NoncentralFCDF(crit, df1, df2, lambda), nil
}
