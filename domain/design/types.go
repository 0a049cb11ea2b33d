package design

import (
	"fmt"
	"sort"

	"powersim/domain/core"
)

// Condition labels one experimental condition (group, cell, treatment arm)
type Condition string

// Observation is a single simulated measurement tagged by subject and condition
type Observation struct {
	Subject   int       `json:"subject"`
	Condition Condition `json:"condition"`
	Value     float64   `json:"value"`
}

// Size is one point of the swept grid: how many subjects to simulate and,
// for hierarchical designs, how many trials per subject per condition.
// Trials == 0 means "use the design's own per-condition trial counts".
type Size struct {
	Subjects int `json:"subjects"`
	Trials   int `json:"trials,omitempty"`
}

// Key returns a stable string form used for stream seeding and curve grouping
func (s Size) Key() string {
	if s.Trials == 0 {
		return fmt.Sprintf("n=%d", s.Subjects)
	}
	return fmt.Sprintf("n=%d,t=%d", s.Subjects, s.Trials)
}

// Validate applies the shared size policy: fewer than two subjects cannot
// support any of the tests, and a negative trial count is malformed.
func (s Size) Validate() error {
	if s.Subjects < 2 {
		return core.NewParameterError("subjects", fmt.Sprintf("must be >= 2, got %d", s.Subjects))
	}
	if s.Trials < 0 {
		return core.NewParameterError("trials", fmt.Sprintf("must be >= 0, got %d", s.Trials))
	}
	return nil
}

// Dataset is an ordered collection of observations produced by one replication
type Dataset struct {
	Observations []Observation
}

// Conditions returns the distinct condition labels in first-appearance order
func (d Dataset) Conditions() []Condition {
	seen := make(map[Condition]bool)
	var out []Condition
	for _, obs := range d.Observations {
		if !seen[obs.Condition] {
			seen[obs.Condition] = true
			out = append(out, obs.Condition)
		}
	}
	return out
}

// ValuesFor returns all raw values recorded under one condition, in order
func (d Dataset) ValuesFor(cond Condition) []float64 {
	var out []float64
	for _, obs := range d.Observations {
		if obs.Condition == cond {
			out = append(out, obs.Value)
		}
	}
	return out
}

// SubjectMeans aggregates trial-level values to one mean per subject for the
// given condition, returned in ascending subject order. Paired tests operate
// on these aggregates, not on raw trials.
func (d Dataset) SubjectMeans(cond Condition) ([]int, []float64) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, obs := range d.Observations {
		if obs.Condition != cond {
			continue
		}
		sums[obs.Subject] += obs.Value
		counts[obs.Subject]++
	}

	subjects := make([]int, 0, len(sums))
	for s := range sums {
		subjects = append(subjects, s)
	}
	sort.Ints(subjects)

	means := make([]float64, len(subjects))
	for i, s := range subjects {
		means[i] = sums[s] / float64(counts[s])
	}
	return subjects, means
}
