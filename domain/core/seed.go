package core

import (
	"crypto/sha256"
	"encoding/binary"
	"strconv"
)

// DeriveSeed folds a base seed and a sequence of stream labels into a
// 128-bit seed pair. Every (label sequence) gets a statistically independent
// stream, so replications reproduce bit-identically no matter which worker
// picks them up or in what order.
func DeriveSeed(base int64, parts ...string) (uint64, uint64) {
	h := sha256.New()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	h.Write(buf[:])

	for _, p := range parts {
		// Length-prefix each part so ("ab","c") and ("a","bc") differ.
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}

	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16])
}
