package prime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign(t *testing.T) {
	universe := map[string][]string{
		"color": {"Red", "Blue", "Green"},
		"size":  {"S", "M"},
	}
	raw := Assign(universe)
	require.Len(t, raw, 2)

	seen := map[uint64]bool{}
	total := 0
	for _, values := range raw {
		for _, p := range values {
			assert.Greater(t, p, uint64(1))
			assert.True(t, isPrime(p), "%d is not prime", p)
			assert.False(t, seen[p], "prime %d assigned twice", p)
			seen[p] = true
			total++
		}
	}
	assert.Equal(t, 5, total)

	// Sorted key/value order makes assignment deterministic.
	assert.Equal(t, raw, Assign(universe))

	// First five primes, handed out in sorted traversal order.
	assert.Equal(t, uint64(3), raw["color"]["Green"]) // Blue < Green < Red
	assert.Equal(t, uint64(2), raw["color"]["Blue"])
}

func TestAssignLoadsCleanly(t *testing.T) {
	raw := Assign(map[string][]string{
		"color": {"Red", "Blue"},
		"size":  {"S", "M", "L"},
	})
	_, warnings, err := Load(raw, SingleTier("attrs", []string{"color", "size"}))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestAssignFromDisjointRanges(t *testing.T) {
	universe := map[string][]string{
		"color": {"Red", "Blue"},
		"size":  {"S", "M"},
	}

	first := AssignFrom(universe, 0)
	second := AssignFrom(universe, 4)
	assert.Equal(t, Assign(universe), first)

	// Skipping past the first table's primes yields a disjoint mapping.
	used := map[uint64]bool{}
	for _, values := range first {
		for _, p := range values {
			used[p] = true
		}
	}
	for key, values := range second {
		for value, p := range values {
			assert.True(t, isPrime(p), "%d is not prime", p)
			assert.False(t, used[p], "prime %d reused for %s=%s", p, key, value)
		}
	}
	assert.Equal(t, uint64(11), second["color"]["Blue"]) // 2,3,5,7 skipped
}

func TestPrimes(t *testing.T) {
	assert.Equal(t, []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}, Primes(10))
}

func TestNextPrime(t *testing.T) {
	tests := []struct{ in, want uint64 }{
		{0, 2}, {2, 2}, {3, 3}, {4, 5}, {14, 17}, {24, 29}, {97, 97},
	}
	for _, tt := range tests {
		if got := nextPrime(tt.in); got != tt.want {
			t.Errorf("nextPrime(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
