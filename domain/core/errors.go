package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Parameter validation errors; these fail fast, before any replication runs
	ErrInvalidParameter        = errors.New("invalid design parameter")
	ErrInvalidSampleSize       = fmt.Errorf("%w: sample size", ErrInvalidParameter)
	ErrInvalidTrialCount       = fmt.Errorf("%w: trial count", ErrInvalidParameter)
	ErrInvalidSD               = fmt.Errorf("%w: standard deviation", ErrInvalidParameter)
	ErrNotPositiveSemiDefinite = fmt.Errorf("%w: covariance matrix is not positive semi-definite", ErrInvalidParameter)

	// Per-replication errors
	ErrDegenerateSample = errors.New("degenerate sample: test statistic undefined")

	// Sizing errors
	ErrThresholdNotReached = errors.New("no grid point reaches the target power")

	// Lookup errors
	ErrRunNotFound = errors.New("power run not found")
)

// NewParameterError annotates an invalid-parameter failure with field context.
func NewParameterError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, reason)
}

// NewDegenerateSampleError reports which test could not produce a defined p-value.
func NewDegenerateSampleError(test string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrDegenerateSample, test, reason)
}

// Error checking helpers
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsDegenerateSample(err error) bool {
	return errors.Is(err, ErrDegenerateSample)
}

func IsThresholdNotReached(err error) bool {
	return errors.Is(err, ErrThresholdNotReached)
}
