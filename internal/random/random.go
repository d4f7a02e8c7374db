// Package random isolates the non-deterministic choices made for
// presentation (insight order, suggestion wording) so tests can pin them.
package random

import (
	"math/rand/v2"
	"time"
)

// Source provides uniform selection and uniform shuffles.
type Source interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Rand is a seedable Source. It is not safe for concurrent use.
type Rand struct {
	r *rand.Rand
}

// New returns a Source that always produces the same sequence for seed.
func New(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeeded returns a Source seeded from the wall clock.
func NewTimeSeeded() *Rand {
	return New(uint64(time.Now().UnixNano()))
}

// Intn returns a uniform int in [0, n). n must be positive.
func (r *Rand) Intn(n int) int { return r.r.IntN(n) }

// Shuffle performs a Fisher-Yates shuffle of n elements.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.r.IntN(i + 1)
		swap(i, j)
	}
}

// Identity is a Source that never reorders and always picks index 0.
type Identity struct{}

func (Identity) Intn(int) int { return 0 }

func (Identity) Shuffle(int, func(i, j int)) {}
