package rng

import "math/rand/v2"

// Source is the uniform random source consumed by the lattice and the sampler.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// RNG is a thin wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// New creates a deterministic RNG using the provided seed.
func New(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

func (r *RNG) Float64() float64 { return r.r.Float64() }

func (r *RNG) IntN(n int) int { return r.r.IntN(n) }

// Derive returns the seed of the stream-th independent stream rooted at seed.
// Stream 0 is seed itself so a single-chain run matches its ensemble member 0.
func Derive(seed int64, stream int) int64 {
	if stream == 0 {
		return seed
	}
	// splitmix64 finalizer over (seed, stream)
	z := uint64(seed) + uint64(stream)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
