package ports

import (
	"context"

	"powersim/domain/core"
	"powersim/domain/power"
)

// CurveRepository persists completed power runs. The curve is the only
// artifact that outlives a sweep; everything upstream of it is discarded
// after aggregation.
type CurveRepository interface {
	Save(ctx context.Context, run power.Run) error
	Get(ctx context.Context, id core.RunID) (power.Run, error)
	List(ctx context.Context) ([]power.Run, error)
}
