package ports

import (
	"powersim/domain/design"
)

// SignificanceTest reduces a synthetic dataset to a p-value in [0,1].
// Any required pre-aggregation (e.g. one mean per subject per condition for
// paired tests) is part of the test's contract, not the dataset's.
//
// When the statistic is undefined (zero within-group variance), PValue
// returns core.ErrDegenerateSample rather than silently coercing to a number.
type SignificanceTest interface {
	Name() string
	PValue(ds design.Dataset) (float64, error)
}
