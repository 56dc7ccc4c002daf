// Package entropy provides the seeded random streams every stochastic
// decision in the simulation draws from, plus the two small probability
// helpers used throughout (a fast sigmoid and a 0/1 Poisson sampler).
//
// A Stream is owned by exactly one household. Nothing in this package is
// safe for concurrent use; independent households get independent streams.
package entropy

import (
	"encoding/hex"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

// Stream is a reseedable source of uniform, normal, triangular and
// categorical draws.
type Stream struct {
	rng  *rand.Rand
	seed int64
}

// NewStream creates a stream seeded with seed.
func NewStream(seed int64) *Stream {
	return &Stream{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the stream was last (re)seeded with.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Reseed resets the stream so the same sequence replays from the start.
func (s *Stream) Reseed(seed int64) {
	s.seed = seed
	s.rng.Seed(seed)
}

// Child derives an independent stream whose seed comes from this one.
func (s *Stream) Child() *Stream {
	return NewStream(s.rng.Int63())
}

// Int63 returns a non-negative pseudo-random int64, typically used to seed
// a derived stream.
func (s *Stream) Int63() int64 {
	return s.rng.Int63()
}

// Float returns a uniform float64 in [0, 1).
func (s *Stream) Float() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform float64 between a and b.
func (s *Stream) Uniform(a, b float64) float64 {
	return a + (b-a)*s.rng.Float64()
}

// Normal returns a normally distributed value with the given mean and
// standard deviation.
func (s *Stream) Normal(mu, sigma float64) float64 {
	return mu + sigma*s.rng.NormFloat64()
}

// Triangular draws from a triangular distribution on [low, high] peaking
// at mode.
func (s *Stream) Triangular(low, high, mode float64) float64 {
	if high == low {
		return low
	}
	u := s.rng.Float64()
	c := (mode - low) / (high - low)
	if u > c {
		u = 1 - u
		c = 1 - c
		low, high = high, low
	}
	return low + (high-low)*math.Sqrt(u*c)
}

// Bernoulli reports whether an event with probability p happened.
func (s *Stream) Bernoulli(p float64) bool {
	return p > s.rng.Float64()
}

// Intn returns a uniform int in [0, n). n must be positive.
func (s *Stream) Intn(n int) int {
	return s.rng.Intn(n)
}

// IntRange returns a uniform int in [a, b], both inclusive.
func (s *Stream) IntRange(a, b int) int {
	if b <= a {
		return a
	}
	return a + s.rng.Intn(b-a+1)
}

// Weighted picks an index with probability proportional to its weight.
// Weights need not sum to one. A zero total falls back to index 0.
func (s *Stream) Weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}

	r := s.rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

// ID returns a random 32-character hex identifier drawn from the stream,
// so identifiers replay under the same seed.
func (s *Stream) ID() string {
	u, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		// *rand.Rand reads never fail.
		panic(err)
	}
	return hex.EncodeToString(u[:])
}
