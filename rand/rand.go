// rand/rand.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"time"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a small wrapper around a PCG generator. It is not safe for
// concurrent use; each goroutine that needs randomness should Make its
// own.
type Rand struct {
	r *pcg.PCG32
}

// Make returns a Rand seeded from the current time.
func Make() *Rand {
	r := &Rand{r: pcg.NewPCG32()}
	r.Seed(time.Now().UnixNano())
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

// Bool returns true with probability p.
func (r *Rand) Bool(p float32) bool {
	return r.Float32() < p
}

// Range returns a uniformly distributed value in [a,b].
func (r *Rand) Range(a, b float32) float32 {
	return a + (b-a)*r.Float32()
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}

func Sample[T any](r *Rand, t ...T) T {
	return t[r.Intn(len(t))]
}

// SampleFiltered uniformly randomly samples a slice, returning the index
// of the sampled item, using provided predicate function to filter the
// items that may be sampled.  An index of -1 is returned if the slice is
// empty or the predicate returns false for all items.
func SampleFiltered[T any](r *Rand, slice []T, pred func(T) bool) int {
	idx := -1
	candidates := 0
	for i, v := range slice {
		if pred(v) {
			candidates++
			p := float32(1) / float32(candidates)
			if r.Float32() < p {
				idx = i
			}
		}
	}
	return idx
}

// SampleWeighted randomly samples an element from the given slice with the
// probability of choosing each element proportional to the value returned
// by the provided callback.
func SampleWeighted[T any](r *Rand, slice []T, weight func(T) int) int {
	// Weighted reservoir sampling...
	idx := -1
	sumWt := 0
	for i, v := range slice {
		w := weight(v)
		if w == 0 {
			continue
		}

		sumWt += w
		p := float32(w) / float32(sumWt)
		if r.Float32() < p {
			idx = i
		}
	}
	return idx
}
