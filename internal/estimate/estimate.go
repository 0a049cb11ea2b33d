// Package estimate turns an observed pilot table into the parameter summary
// the simulators consume: per-condition means, the subject-level covariance
// matrix, a pooled residual SD, and per-condition trial counts.
package estimate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"

	"powersim/domain/core"
	"powersim/domain/design"
)

// Descriptive summarizes one condition's raw pilot values
type Descriptive struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	SD     float64 `json:"sd"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Params is the estimated summary a hierarchical design is built from
type Params struct {
	Conditions  []design.Condition               `json:"conditions"`
	Means       []float64                        `json:"means"`
	Covariance  *mat.SymDense                    `json:"-"`
	PooledSD    float64                          `json:"pooled_sd"`
	TrialCounts map[design.Condition]int         `json:"trial_counts"`
	Subjects    int                              `json:"subjects"`
	Summary     map[design.Condition]Descriptive `json:"summary"`
}

// WithinSubjectSpec assembles a simulator-ready spec from the estimates
func (p Params) WithinSubjectSpec() design.WithinSubjectSpec {
	return design.WithinSubjectSpec{
		Conditions:  p.Conditions,
		Means:       p.Means,
		Covariance:  p.Covariance,
		ResidualSD:  p.PooledSD,
		TrialCounts: p.TrialCounts,
	}
}

// FromPilot estimates design parameters from observed subject/condition/value
// records. Only subjects observed under every condition enter the covariance
// estimate; the covariance is ridge-clamped to positive semi-definiteness
// when sampling noise pushes it over the boundary.
func FromPilot(obs []design.Observation) (Params, error) {
	if len(obs) == 0 {
		return Params{}, core.NewParameterError("pilot", "no observations")
	}

	ds := design.Dataset{Observations: obs}
	conds := ds.Conditions()
	if len(conds) < 2 {
		return Params{}, core.NewParameterError("pilot", "need at least two conditions to estimate a hierarchy")
	}

	// Per-subject, per-condition trial values
	type cellKey struct {
		subject int
		cond    design.Condition
	}
	cells := make(map[cellKey][]float64)
	subjectsSeen := make(map[int]map[design.Condition]bool)
	for _, o := range obs {
		k := cellKey{o.Subject, o.Condition}
		cells[k] = append(cells[k], o.Value)
		if subjectsSeen[o.Subject] == nil {
			subjectsSeen[o.Subject] = make(map[design.Condition]bool)
		}
		subjectsSeen[o.Subject][o.Condition] = true
	}

	// Complete cases only, in subject order of first appearance
	var complete []int
	seenSubject := make(map[int]bool)
	for _, o := range obs {
		if seenSubject[o.Subject] {
			continue
		}
		seenSubject[o.Subject] = true
		if len(subjectsSeen[o.Subject]) == len(conds) {
			complete = append(complete, o.Subject)
		}
	}
	if len(complete) < 2 {
		return Params{}, core.NewParameterError("pilot", fmt.Sprintf("need at least 2 complete subjects, got %d", len(complete)))
	}

	// Subject-by-condition matrix of cell means feeds the covariance
	k := len(conds)
	subjectMeans := mat.NewDense(len(complete), k, nil)
	var pooledSS float64
	var pooledDF int
	trialTotals := make(map[design.Condition]int)
	for i, subj := range complete {
		for j, cond := range conds {
			vals := cells[cellKey{subj, cond}]
			m := gstat.Mean(vals, nil)
			subjectMeans.Set(i, j, m)
			trialTotals[cond] += len(vals)
			if len(vals) >= 2 {
				pooledSS += gstat.Variance(vals, nil) * float64(len(vals)-1)
				pooledDF += len(vals) - 1
			}
		}
	}
	if pooledDF == 0 {
		return Params{}, core.NewParameterError("pilot", "no trial-level replication: every subject-condition cell has a single observation")
	}
	pooledSD := math.Sqrt(pooledSS / float64(pooledDF))

	means := make([]float64, k)
	for j := 0; j < k; j++ {
		means[j] = gstat.Mean(mat.Col(nil, j, subjectMeans), nil)
	}

	cov := mat.NewSymDense(k, nil)
	gstat.CovarianceMatrix(cov, subjectMeans, nil)
	cov = clampPSD(cov)

	trialCounts := make(map[design.Condition]int, k)
	summary := make(map[design.Condition]Descriptive, k)
	for _, cond := range conds {
		trialCounts[cond] = int(math.Round(float64(trialTotals[cond]) / float64(len(complete))))
		if trialCounts[cond] < 1 {
			trialCounts[cond] = 1
		}
		d, err := describe(ds.ValuesFor(cond))
		if err != nil {
			return Params{}, fmt.Errorf("summarizing condition %q: %w", cond, err)
		}
		summary[cond] = d
	}

	return Params{
		Conditions:  conds,
		Means:       means,
		Covariance:  cov,
		PooledSD:    pooledSD,
		TrialCounts: trialCounts,
		Subjects:    len(complete),
		Summary:     summary,
	}, nil
}

// clampPSD nudges a near-degenerate covariance estimate back onto the
// positive semi-definite cone by growing a diagonal ridge until Cholesky
// factorization succeeds.
func clampPSD(cov *mat.SymDense) *mat.SymDense {
	var chol mat.Cholesky
	if chol.Factorize(cov) {
		return cov
	}

	n, _ := cov.Dims()
	maxDiag := 0.0
	for i := 0; i < n; i++ {
		if d := math.Abs(cov.At(i, i)); d > maxDiag {
			maxDiag = d
		}
	}
	if maxDiag == 0 {
		maxDiag = 1
	}

	for ridge := 1e-10 * maxDiag; ridge <= maxDiag; ridge *= 10 {
		clamped := mat.NewSymDense(n, nil)
		clamped.CopySym(cov)
		for i := 0; i < n; i++ {
			clamped.SetSym(i, i, clamped.At(i, i)+ridge)
		}
		if chol.Factorize(clamped) {
			return clamped
		}
	}
	// A full-strength ridge always factorizes; this is unreachable in
	// practice but keeps the function total.
	identityScaled := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		identityScaled.SetSym(i, i, maxDiag)
	}
	return identityScaled
}

func describe(vals []float64) (Descriptive, error) {
	mean, err := stats.Mean(vals)
	if err != nil {
		return Descriptive{}, err
	}
	sd, err := stats.StandardDeviationSample(vals)
	if err != nil {
		return Descriptive{}, err
	}
	median, err := stats.Median(vals)
	if err != nil {
		return Descriptive{}, err
	}
	lo, err := stats.Min(vals)
	if err != nil {
		return Descriptive{}, err
	}
	hi, err := stats.Max(vals)
	if err != nil {
		return Descriptive{}, err
	}
	return Descriptive{N: len(vals), Mean: mean, SD: sd, Median: median, Min: lo, Max: hi}, nil
}
