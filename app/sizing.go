package app

import (
	"context"

	"powersim/domain/design"
	"powersim/domain/power"
	"powersim/ports"
)

// DefaultTargetPower is the conventional planning threshold
const DefaultTargetPower = 0.8

// SizingService answers "how many subjects (or trials) do I need" by
// estimating the full power curve and scanning it for the first size that
// reaches the target.
type SizingService struct {
	Estimator *Estimator
	Target    float64
}

// NewSizingService wraps an estimator with the default 0.8 target
func NewSizingService(est *Estimator) *SizingService {
	return &SizingService{Estimator: est, Target: DefaultTargetPower}
}

// RequiredSize sweeps the grid and returns the smallest qualifying size along
// with the estimated curve. When no grid point reaches the target the curve
// is still returned with core.ErrThresholdNotReached, so callers can report
// how close the grid came.
func (s *SizingService) RequiredSize(ctx context.Context, gen ports.DatasetGenerator, test ports.SignificanceTest, grid []design.Size) (design.Size, power.Curve, error) {
	curve, err := s.Estimator.Sweep(ctx, gen, test, grid)
	if err != nil {
		return design.Size{}, power.Curve{}, err
	}
	size, err := curve.MinimumSize(s.Target)
	if err != nil {
		return design.Size{}, curve, err
	}
	return size, curve, nil
}
