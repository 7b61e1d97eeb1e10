package executor

import (
	"math/rand/v2"
	"time"
)

const (
	// MinTimeoutSeconds and MaxTimeoutSeconds bound the per-trial prover
	// time limit, both inclusive.
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 15
)

// Sampler picks the case and time limit of each trial.
type Sampler interface {
	// NextCase returns an index in [0, n).
	NextCase(n int) int
	// NextTimeout returns a time limit in seconds within
	// [MinTimeoutSeconds, MaxTimeoutSeconds].
	NextTimeout() int
}

// RandSampler draws uniformly from a PCG source.
type RandSampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler whose sequence is fully determined by seed.
func NewSampler(seed uint64) *RandSampler {
	return &RandSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewUnseededSampler returns a sampler seeded from the clock, along with the
// seed so a run can be replayed.
func NewUnseededSampler() (*RandSampler, uint64) {
	seed := uint64(time.Now().UnixNano())
	return NewSampler(seed), seed
}

// NextCase draws a case index uniformly.
func (s *RandSampler) NextCase(n int) int {
	return s.rng.IntN(n)
}

// NextTimeout draws a time limit uniformly.
func (s *RandSampler) NextTimeout() int {
	return MinTimeoutSeconds + s.rng.IntN(MaxTimeoutSeconds-MinTimeoutSeconds+1)
}
