package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/store"
)

// Universe returns a small attribute-value universe resembling the reference
// dataset: multi-valued colors and materials, single-valued sizes.
func Universe() map[string][]string {
	return map[string][]string{
		"color":    {"Red", "Blue", "Green", "Yellow", "Black", "White"},
		"size":     {"XS", "S", "M", "L", "XL"},
		"material": {"Cotton", "Polyester", "Wool", "Silk"},
	}
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Pick returns one random element of values.
func (r *RNG) Pick(values []string) string {
	return values[r.Intn(len(values))]
}

// Sample returns k distinct random elements of values.
func (r *RNG) Sample(values []string, k int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.rand.Perm(len(values))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// RandomInventory generates n raw records over the universe. Roughly 30% of
// records carry two colors and two materials, mirroring the multi-valued
// distribution of the reference inventory generator.
func RandomInventory(rng *RNG, universe map[string][]string, n int) []store.RawRecord {
	out := make([]store.RawRecord, n)
	for i := range out {
		attrs := make(map[string][]string, len(universe))
		for key, values := range universe {
			k := 1
			if (key == "color" || key == "material") && rng.Intn(10) < 3 && len(values) > 1 {
				k = 2
			}
			attrs[key] = rng.Sample(values, k)
		}
		out[i] = store.RawRecord{
			ID:         fmt.Sprintf("SKU%05d", i+1),
			Attributes: attrs,
		}
	}
	return out
}

// RandomPrimes assigns primes to the universe via prime.Assign.
func RandomPrimes(universe map[string][]string) prime.Raw {
	return prime.Assign(universe)
}
