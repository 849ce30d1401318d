package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Source is the random source every roll in the simulation is drawn from.
// *rand.Rand satisfies it.
type Source interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewSeed generates a high-entropy seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// roll returns base + uniform_int(0, spread). A spread of zero or less does
// not consume the source.
func roll(src Source, base, spread int) int {
	if spread <= 0 {
		return base
	}
	return base + src.Intn(spread+1)
}

// chance reports whether a U[0,1) draw falls below p.
func chance(src Source, p float64) bool {
	return src.Float64() < p
}
