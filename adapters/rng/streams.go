// Package rng derives independent deterministic random streams for
// simulation cells by folding a base seed with the cell's coordinates.
package rng

import (
	"math/rand/v2"
	"strconv"

	"powersim/domain/core"
	"powersim/ports"
)

// DerivedStreams hands out one PCG stream per (sizeKey, replication) cell.
// The stream seed is a SHA-256 fold of the base seed and the cell
// coordinates, so streams are independent of each other and of execution
// order.
type DerivedStreams struct {
	base int64
}

// NewDerivedStreams creates a stream factory rooted at the given base seed
func NewDerivedStreams(base int64) *DerivedStreams {
	return &DerivedStreams{base: base}
}

// Stream implements ports.RNG
func (d *DerivedStreams) Stream(sizeKey string, replication int) rand.Source {
	hi, lo := core.DeriveSeed(d.base, sizeKey, strconv.Itoa(replication))
	return rand.NewPCG(hi, lo)
}

var _ ports.RNG = (*DerivedStreams)(nil)
