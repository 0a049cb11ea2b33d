// Package reference provides closed-form power for the classical tests,
// used to cross-validate the Monte Carlo estimator. It is not a dependency
// of the simulator's correctness.
package reference

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ncfTolerance bounds the unaccounted Poisson-mixture mass in the
// noncentral F series.
const ncfTolerance = 1e-12

// NoncentralFCDF evaluates P(F' <= x) for a noncentral F distribution with
// d1 and d2 degrees of freedom and noncentrality lambda, via the standard
// Poisson mixture of regularized incomplete beta functions:
//
//	P(F' <= x) = sum_j pois(j; lambda/2) * I_y(d1/2 + j, d2/2),
//	y = d1*x / (d1*x + d2)
func NoncentralFCDF(x, d1, d2, lambda float64) float64 {
	if x <= 0 {
		return 0
	}
	if lambda == 0 {
		return distuv.F{D1: d1, D2: d2}.CDF(x)
	}

	y := d1 * x / (d1*x + d2)

	half := lambda / 2
	weight := math.Exp(-half) // pois(0; lambda/2)
	var accumulated, cdf float64
	for j := 0; ; j++ {
		if j > 0 {
			weight *= half / float64(j)
		}
		cdf += weight * distuv.Beta{Alpha: d1/2 + float64(j), Beta: d2 / 2}.CDF(y)
		accumulated += weight
		if 1-accumulated < ncfTolerance {
			break
		}
		if j > 100000 {
			break
		}
	}
	return cdf
}

// noncentralTTwoSidedPower computes P(|T'| > crit) for a noncentral t with
// the given degrees of freedom and noncentrality delta, using the exact
// identity T'^2 ~ F(1, df; delta^2) for the two-sided rejection region.
func noncentralTTwoSidedPower(crit, df, delta float64) float64 {
	return 1 - NoncentralFCDF(crit*crit, 1, df, delta*delta)
}
