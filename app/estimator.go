// Package app wires designs, tests and random streams into power sweeps.
package app

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"powersim/domain/core"
	"powersim/domain/design"
	"powersim/domain/power"
	"powersim/internal"
	"powersim/ports"
)

const (
	// DefaultAlpha is the significance threshold for counting a rejection
	DefaultAlpha = 0.05
	// DefaultReplications is the Monte Carlo replication count per grid point
	DefaultReplications = 1000
)

// Estimator runs the simulate-test-aggregate loop over a grid of sizes.
// Every (size, replication) cell is independent and side-effect-free, so the
// sweep is a bounded parallel map followed by a grouped reduction; per-cell
// seed derivation keeps the result identical for any worker count.
type Estimator struct {
	Alpha        float64
	Replications int
	Workers      int

	rng ports.RNG
	log *internal.Logger
}

// NewEstimator creates an estimator with the given stream factory and
// defaults for alpha, replications, and worker count.
func NewEstimator(rng ports.RNG, log *internal.Logger) *Estimator {
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	return &Estimator{
		Alpha:        DefaultAlpha,
		Replications: DefaultReplications,
		Workers:      runtime.GOMAXPROCS(0),
		rng:          rng,
		log:          log,
	}
}

// cell is one (size, replication) result prior to aggregation
type cell struct {
	pValue     float64
	degenerate bool
}

// Sweep estimates empirical power for every size in grid order.
// All sizes are validated before any replication runs; a degenerate
// replication is excluded from that point's numerator and denominator and
// logged at warn level rather than aborting the sweep.
func (e *Estimator) Sweep(ctx context.Context, gen ports.DatasetGenerator, test ports.SignificanceTest, grid []design.Size) (power.Curve, error) {
	if len(grid) == 0 {
		return power.Curve{}, core.NewParameterError("grid", "must contain at least one size")
	}
	if e.Replications < 1 {
		return power.Curve{}, core.NewParameterError("replications", "must be >= 1")
	}
	if e.Alpha <= 0 || e.Alpha >= 1 {
		return power.Curve{}, core.NewParameterError("alpha", "must be in (0,1)")
	}
	for _, size := range grid {
		if err := gen.Validate(size); err != nil {
			return power.Curve{}, fmt.Errorf("size %s: %w", size.Key(), err)
		}
	}

	start := time.Now()
	cells := make([][]cell, len(grid))
	for i := range cells {
		cells[i] = make([]cell, e.Replications)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	for i, size := range grid {
		for r := 0; r < e.Replications; r++ {
			i, r, size := i, r, size
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				src := e.rng.Stream(size.Key(), r)
				ds, err := gen.Generate(size, src)
				if err != nil {
					return fmt.Errorf("generate %s replication %d: %w", size.Key(), r, err)
				}
				p, err := test.PValue(ds)
				if err != nil {
					if core.IsDegenerateSample(err) {
						e.log.Warn("excluding degenerate replication: size=%s replication=%d: %v", size.Key(), r, err)
						cells[i][r] = cell{degenerate: true}
						return nil
					}
					return fmt.Errorf("test %s at %s replication %d: %w", test.Name(), size.Key(), r, err)
				}
				cells[i][r] = cell{pValue: p}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return power.Curve{}, err
	}

	curve := power.Curve{Alpha: e.Alpha, Points: make([]power.CurvePoint, len(grid))}
	for i, size := range grid {
		rejections, excluded := 0, 0
		for _, c := range cells[i] {
			if c.degenerate {
				excluded++
				continue
			}
			if c.pValue < e.Alpha {
				rejections++
			}
		}
		valid := e.Replications - excluded
		pt := power.CurvePoint{Size: size, Replications: valid, Excluded: excluded}
		if valid > 0 {
			pt.Power = float64(rejections) / float64(valid)
		} else {
			pt.Power = math.NaN()
		}
		curve.Points[i] = pt
	}

	e.log.Info("sweep complete: design=%s test=%s points=%d replications=%d elapsed=%s",
		gen.Name(), test.Name(), len(grid), e.Replications, time.Since(start).Round(time.Millisecond))
	return curve, nil
}

// Points returns the raw grid points for one size, mainly for diagnostics
// and calibration plots. Sweep is the aggregate path and never materializes
// p-values beyond the per-point tallies.
func (e *Estimator) Points(ctx context.Context, gen ports.DatasetGenerator, test ports.SignificanceTest, size design.Size) ([]power.GridPoint, error) {
	if err := gen.Validate(size); err != nil {
		return nil, err
	}

	out := make([]power.GridPoint, 0, e.Replications)
	for r := 0; r < e.Replications; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := e.rng.Stream(size.Key(), r)
		ds, err := gen.Generate(size, src)
		if err != nil {
			return nil, err
		}
		p, err := test.PValue(ds)
		if err != nil {
			if core.IsDegenerateSample(err) {
				out = append(out, power.GridPoint{Size: size, Replication: r, Degenerate: true})
				continue
			}
			return nil, err
		}
		out = append(out, power.GridPoint{Size: size, Replication: r, PValue: p})
	}
	return out, nil
}

func (e *Estimator) workers() int {
	if e.Workers < 1 {
		return 1
	}
	return e.Workers
}
