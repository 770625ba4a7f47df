package service

import (
	"math/rand"
	"time"
)

// RandSource is the request-scoped perturbation stream. *rand.Rand
// satisfies it; tests pass a fixed source.
type RandSource interface {
	Float64() float64
	NormFloat64() float64
}

// NewRand returns a fresh source for one request. seed 0 seeds from the clock.
func NewRand(seed int64) RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform draws from [lo, hi)
func uniform(r RandSource, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
