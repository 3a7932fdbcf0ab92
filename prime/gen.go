package prime

import "slices"

// Assign deterministically maps an attribute-value universe to consecutive
// primes starting at 2. Keys are visited in sorted order and values in
// sorted order within each key, so the same universe always yields the same
// mapping. The result is in the shape accepted by Load.
func Assign(universe map[string][]string) Raw {
	return AssignFrom(universe, 0)
}

// AssignFrom is Assign starting after the first skip primes. Segments that
// each carry their own dictionary use it to draw from disjoint prime ranges.
func AssignFrom(universe map[string][]string, skip int) Raw {
	keys := make([]string, 0, len(universe))
	for k := range universe {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	raw := make(Raw, len(keys))
	next := uint64(2)
	for i := 0; i < skip; i++ {
		next = nextPrime(next + 1)
	}
	for _, key := range keys {
		values := slices.Clone(universe[key])
		slices.Sort(values)
		m := make(map[string]uint64, len(values))
		for _, v := range values {
			if _, dup := m[v]; dup {
				continue
			}
			m[v] = next
			next = nextPrime(next + 1)
		}
		raw[key] = m
	}
	return raw
}

// Primes returns the first n primes.
func Primes(n int) []uint64 {
	out := make([]uint64, 0, n)
	p := uint64(2)
	for len(out) < n {
		out = append(out, p)
		p = nextPrime(p + 1)
	}
	return out
}

// nextPrime returns the smallest prime >= n, via trial division. The primes
// handed out for attribute values are tiny, so this never matters for speed.
func nextPrime(n uint64) uint64 {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for {
		if isPrime(n) {
			return n
		}
		n += 2
	}
}

func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
