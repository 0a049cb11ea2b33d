package simdata

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"powersim/domain/core"
	"powersim/domain/design"
	"powersim/ports"
)

// WithinSubject draws, per subject, one vector of true condition means from
// MVN(Means, Covariance), then TrialsFor(condition) trial-level observations
// per condition from Normal(subjectMean, residualSD).
//
// The single pooled residual SD is an approximation inherited from how these
// parameters are estimated; Spec.ResidualSDFn overrides it per cell when a
// richer noise model is wanted.
type WithinSubject struct {
	Spec design.WithinSubjectSpec
}

// NewWithinSubject wraps a validated-on-use within-subject spec
func NewWithinSubject(spec design.WithinSubjectSpec) *WithinSubject {
	return &WithinSubject{Spec: spec}
}

// Name implements ports.DatasetGenerator
func (g *WithinSubject) Name() string {
	return "within_subject"
}

// Validate implements ports.DatasetGenerator
func (g *WithinSubject) Validate(size design.Size) error {
	if err := size.Validate(); err != nil {
		return err
	}
	return g.Spec.Validate()
}

// Generate implements ports.DatasetGenerator
func (g *WithinSubject) Generate(size design.Size, src rand.Source) (design.Dataset, error) {
	if err := g.Validate(size); err != nil {
		return design.Dataset{}, err
	}

	mvn, ok := distmv.NewNormal(g.Spec.Means, g.Spec.Covariance, src)
	if !ok {
		// Validate already ran a Cholesky check, so this indicates a
		// numerically borderline matrix rather than a caller bug.
		return design.Dataset{}, fmt.Errorf("subject-level covariance rejected by sampler: %w", core.ErrNotPositiveSemiDefinite)
	}

	total := 0
	for _, c := range g.Spec.Conditions {
		total += g.Spec.TrialsFor(c, size)
	}

	obs := make([]design.Observation, 0, size.Subjects*total)
	subjectMeans := make([]float64, len(g.Spec.Conditions))
	for subject := 1; subject <= size.Subjects; subject++ {
		mvn.Rand(subjectMeans)
		for ci, cond := range g.Spec.Conditions {
			sd := g.Spec.ResidualSD
			if g.Spec.ResidualSDFn != nil {
				sd = g.Spec.ResidualSDFn(subject, cond)
			}
			trial := distuv.Normal{Mu: subjectMeans[ci], Sigma: sd, Src: src}
			for t := 0; t < g.Spec.TrialsFor(cond, size); t++ {
				obs = append(obs, design.Observation{
					Subject:   subject,
					Condition: cond,
					Value:     trial.Rand(),
				})
			}
		}
	}
	return design.Dataset{Observations: obs}, nil
}

var _ ports.DatasetGenerator = (*WithinSubject)(nil)
