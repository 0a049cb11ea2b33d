package ports

import (
	"math/rand/v2"

	"powersim/domain/design"
)

// DatasetGenerator turns a design specification into synthetic datasets.
// Generate must be a pure function of (size, src): stateless between calls,
// bit-identical output for identical sources.
type DatasetGenerator interface {
	// Name identifies the design for run manifests and logs
	Name() string

	// Validate fails fast before any replication runs
	Validate(size design.Size) error

	// Generate draws one synthetic dataset at the given size
	Generate(size design.Size, src rand.Source) (design.Dataset, error)
}
