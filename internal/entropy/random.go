// Package entropy provides the seeded pseudo-random source every experiment
// draws from. A single *rand.Rand is created per experiment and threaded
// through the generators; nothing reads a process-global source.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// New returns a PRNG seeded with seed. A zero seed asks for a fresh seed
// from crypto/rand, for runs that should not be reproducible.
func New(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return mrand.New(mrand.NewSource(seed))
}

// CryptoSeed returns a non-zero seed read from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 1
	}
	s := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if s == 0 {
		return 1
	}
	return s
}

// Uniform returns a float64 in [0, 1).
func Uniform(r *mrand.Rand) float64 {
	return r.Float64()
}

// Between returns a float64 in [lo, hi).
func Between(r *mrand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Normal returns a sample from N(mu, sigma). A zero sigma returns mu
// without consuming randomness.
func Normal(r *mrand.Rand, mu, sigma float64) float64 {
	if sigma == 0 {
		return mu
	}
	return mu + sigma*r.NormFloat64()
}

// IntBetween returns an int in [lo, hi], both ends inclusive.
func IntBetween(r *mrand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance reports whether a uniform draw falls below p.
func Chance(r *mrand.Rand, p float64) bool {
	return r.Float64() < p
}

// Choice returns a uniformly chosen element of items. It panics on an
// empty slice, like indexing would.
func Choice[T any](r *mrand.Rand, items []T) T {
	return items[r.Intn(len(items))]
}
