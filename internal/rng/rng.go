// Package rng provides the shared pseudo-random generator used by a
// simulation round and the sampling helpers built on top of it.
//
// A round creates exactly one generator and hands the same handle to every
// badgeholder. All draws come from that stream in a fixed order, so the same
// seed reproduces a round exactly. This is not a source of secure randomness.
package rng

import (
	"math"
	"math/rand/v2"
	"slices"
)

// seedMix decorrelates the second PCG word from the seed.
const seedMix = 0x9e3779b97f4a7c15

// New returns a deterministic generator for seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// SampleIndices draws k distinct indices from [0, n) without replacement and
// returns them in ascending order. k is clamped to [0, n].
func SampleIndices(r *rand.Rand, n, k int) []int {
	if k <= 0 || n <= 0 {
		return []int{}
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	chosen := r.Perm(n)[:k]
	slices.Sort(chosen)
	return chosen
}

// Normal draws from a normal distribution with the given mean and standard
// deviation.
func Normal(r *rand.Rand, mean, stddev float64) float64 {
	return mean + stddev*r.NormFloat64()
}

// Bernoulli reports whether a single draw falls below p.
// p <= 0 never succeeds and p >= 1 always does; one value is consumed either
// way so the stream position does not depend on p.
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < math.Max(0, p)
}
