package api

import (
	"powersim/domain/design"
	"powersim/domain/power"
)

// DesignRequest selects and parameterizes a dataset generator
type DesignRequest struct {
	Type string `json:"type"` // "independent_groups" or "within_subject"

	// Independent groups
	Groups []design.GroupSpec `json:"groups,omitempty"`

	// Within subject
	Conditions  []design.Condition       `json:"conditions,omitempty"`
	Means       []float64                `json:"means,omitempty"`
	Covariance  [][]float64              `json:"covariance,omitempty"`
	ResidualSD  float64                  `json:"residual_sd,omitempty"`
	TrialCounts map[design.Condition]int `json:"trial_counts,omitempty"`
}

// TestRequest selects and parameterizes a significance test
type TestRequest struct {
	Type      string             `json:"type"` // one_sample_t, two_sample_t, paired_t, one_way_anova
	Condition design.Condition   `json:"condition,omitempty"`
	Mu0       float64            `json:"mu0,omitempty"`
	A         design.Condition   `json:"a,omitempty"`
	B         design.Condition   `json:"b,omitempty"`
	Groups    []design.Condition `json:"groups,omitempty"`
}

// EstimateRequest is the body for the estimate and minimum-size endpoints
type EstimateRequest struct {
	Name         string        `json:"name,omitempty"`
	Design       DesignRequest `json:"design"`
	Test         TestRequest   `json:"test"`
	Grid         []design.Size `json:"grid"`
	Replications int           `json:"replications,omitempty"`
	Alpha        float64       `json:"alpha,omitempty"`
	Seed         *int64        `json:"seed,omitempty"`
	Target       float64       `json:"target,omitempty"` // minimum-size only
}

// EstimateResponse returns the curve and, when persisted, the run id
type EstimateResponse struct {
	Run power.Run `json:"run"`
}

// MinimumSizeResponse returns the first qualifying size with its curve
type MinimumSizeResponse struct {
	Size   design.Size `json:"size"`
	Target float64     `json:"target"`
	Run    power.Run   `json:"run"`
}

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error string `json:"error"`
}
