package ports

import (
	"math/rand/v2"
)

// RNG provides seeded random streams for deterministic simulation.
// Each (sizeKey, replication) pair gets an independent, seed-derived stream,
// so a parallel sweep produces identical results for the same base seed
// regardless of worker count or scheduling.
type RNG interface {
	// Stream creates a deterministic random source for one simulation cell
	Stream(sizeKey string, replication int) rand.Source
}
