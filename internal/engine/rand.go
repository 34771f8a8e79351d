package engine

import (
	"math/rand/v2"
	"sync"
)

// RandomSource supplies the simulator's randomness. Injecting it (instead of
// reaching for a global generator) keeps simulated fills reproducible under
// test: seed the default source, or substitute a scripted fake.
type RandomSource interface {
	// Float64 returns a pseudo-random number in [0, 1).
	Float64() float64
}

// lockedRand wraps a PCG generator with a mutex so it can be shared between
// the simulator and the synthetic feed goroutines.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns a seedable RandomSource safe for concurrent use.
// A seed of 0 selects a non-deterministic seed.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		return &lockedRand{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}
