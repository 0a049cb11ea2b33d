package design

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"powersim/domain/core"
)

// GroupSpec describes one independent group's population
type GroupSpec struct {
	Label Condition `json:"label"`
	Mean  float64   `json:"mean"`
	SD    float64   `json:"sd"`
}

// IndependentGroupsSpec describes a between-subjects design: each swept
// sample size draws that many i.i.d. observations per group directly from
// Normal(mean, sd). There is no subject-level hierarchy; every subject
// contributes exactly one observation under exactly one condition.
type IndependentGroupsSpec struct {
	Groups []GroupSpec `json:"groups"`
}

// Validate fails fast on malformed group parameters
func (s IndependentGroupsSpec) Validate() error {
	if len(s.Groups) == 0 {
		return core.NewParameterError("groups", "at least one group required")
	}
	seen := make(map[Condition]bool)
	for _, g := range s.Groups {
		if g.Label == "" {
			return core.NewParameterError("groups", "empty condition label")
		}
		if seen[g.Label] {
			return core.NewParameterError("groups", fmt.Sprintf("duplicate condition label %q", g.Label))
		}
		seen[g.Label] = true
		if g.SD <= 0 {
			return fmt.Errorf("%w: group %q: sd must be > 0, got %v", core.ErrInvalidSD, g.Label, g.SD)
		}
	}
	return nil
}

// WithinSubjectSpec describes a hierarchical (within-subject) design. Each
// subject owns a vector of true per-condition means drawn from a multivariate
// normal with Means/Covariance, capturing the cross-condition correlation of
// subject-level parameters. Trial-level observations are then drawn around
// the subject's condition mean with a single pooled residual SD.
//
// The pooled ResidualSD shared across subjects and conditions is a deliberate
// approximation carried over from how such parameters are estimated from
// pilot data. ResidualSDFn is the extension hook for per-subject or
// per-condition noise models; leave it nil for the standard pooled model.
type WithinSubjectSpec struct {
	Conditions  []Condition       `json:"conditions"`
	Means       []float64         `json:"means"`
	Covariance  *mat.SymDense     `json:"-"`
	ResidualSD  float64           `json:"residual_sd"`
	TrialCounts map[Condition]int `json:"trial_counts"`

	ResidualSDFn func(subject int, cond Condition) float64 `json:"-"`
}

// Validate fails fast on malformed hierarchy parameters, including a
// Cholesky-based positive semi-definiteness check of the covariance matrix.
func (s WithinSubjectSpec) Validate() error {
	k := len(s.Conditions)
	if k < 2 {
		return core.NewParameterError("conditions", "within-subject design needs at least two conditions")
	}
	seen := make(map[Condition]bool)
	for _, c := range s.Conditions {
		if c == "" {
			return core.NewParameterError("conditions", "empty condition label")
		}
		if seen[c] {
			return core.NewParameterError("conditions", fmt.Sprintf("duplicate condition label %q", c))
		}
		seen[c] = true
	}
	if len(s.Means) != k {
		return core.NewParameterError("means", fmt.Sprintf("got %d means for %d conditions", len(s.Means), k))
	}
	if s.Covariance == nil {
		return core.NewParameterError("covariance", "missing covariance matrix")
	}
	if r, _ := s.Covariance.Dims(); r != k {
		return core.NewParameterError("covariance", fmt.Sprintf("got %dx%d matrix for %d conditions", r, r, k))
	}
	var chol mat.Cholesky
	if !chol.Factorize(s.Covariance) {
		return core.ErrNotPositiveSemiDefinite
	}
	if s.ResidualSD <= 0 {
		return fmt.Errorf("%w: residual sd must be > 0, got %v", core.ErrInvalidSD, s.ResidualSD)
	}
	for _, c := range s.Conditions {
		n, ok := s.TrialCounts[c]
		if !ok || n < 1 {
			return fmt.Errorf("%w: condition %q needs at least 1 trial", core.ErrInvalidTrialCount, c)
		}
	}
	return nil
}

// TrialsFor resolves the trial count for a condition, honoring a sweep-level
// override when the swept Size carries a trial dimension.
func (s WithinSubjectSpec) TrialsFor(cond Condition, size Size) int {
	if size.Trials > 0 {
		return size.Trials
	}
	return s.TrialCounts[cond]
}
