// Package sfi implements square-free-integer encoding of categorical
// attributes.
//
// Each distinct attribute value is represented by a small prime; a record's
// SFI is the product of the primes of all values it carries. Divisibility of
// a record SFI by a query SFI then answers "does the record carry every
// selected value" with a single integer division.
package sfi

import "math"

// Sentinel is the SFI of a record that contributed no primes, either because
// it has no mapped attribute values or because its true product would not fit
// in 64 bits. A sentinel record can only match wildcard queries.
const Sentinel uint64 = 1

// Wildcard is the query SFI that matches every record.
const Wildcard uint64 = 1

// Source resolves an (attribute key, attribute value) pair to its prime.
// Implementations return 1 for unknown pairs so that unmapped attributes
// never constrain the product.
type Source interface {
	Prime(key, value string) uint64
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func(key, value string) uint64

// Prime calls f.
func (f SourceFunc) Prime(key, value string) uint64 { return f(key, value) }

// TierSFI is the encoding result for one tier of a record.
//
// Overflowed distinguishes "the product would not fit in 64 bits" from
// "no attribute contributed a prime"; both force Value to Sentinel, but only
// the former means the record's factorization was lost.
type TierSFI struct {
	Value      uint64 `json:"value"`
	Overflowed bool   `json:"overflowed,omitempty"`
}

// MulOverflows reports whether a*b would exceed 64 bits. b must be > 0.
func MulOverflows(a, b uint64) bool {
	return a > math.MaxUint64/b
}

// Encode folds the attribute values of a record through src into one SFI.
//
// Keys are processed in slice order and values in their given order, so the
// overflow point is reproducible for identical input. Values without a prime
// (src returns 1) are skipped. If the product would exceed 64 bits, Encode
// stops and returns (Sentinel, true); it never wraps.
func Encode(attrs map[string][]string, keys []string, src Source) (uint64, bool) {
	acc := uint64(1)
	for _, key := range keys {
		for _, value := range attrs[key] {
			p := src.Prime(key, value)
			if p <= 1 {
				continue
			}
			if MulOverflows(acc, p) {
				return Sentinel, true
			}
			acc *= p
		}
	}
	return acc, false
}

// EncodeOne is Encode for a single-valued attribute mapping.
func EncodeOne(attrs map[string]string, keys []string, src Source) (uint64, bool) {
	multi := make(map[string][]string, len(attrs))
	for k, v := range attrs {
		multi[k] = []string{v}
	}
	return Encode(multi, keys, src)
}

// Divides reports whether query divides value, treating query 0 as the
// wildcard. A Sentinel value only satisfies wildcard queries.
func Divides(value, query uint64) bool {
	if query <= Wildcard {
		return true
	}
	if value == Sentinel {
		return false
	}
	return value%query == 0
}
