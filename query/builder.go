// Package query builds per-tier query SFIs from user selections, using the
// same multiplicative rule as record encoding.
package query

import (
	"fmt"

	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/sfi"
)

// Selection maps attribute keys to the values the user selected. A key with
// no selected values, or absent entirely, does not constrain its tier.
type Selection map[string][]string

// ErrSelectionOverflow indicates a selection whose prime product does not
// fit in 64 bits. Such a query could never be satisfied, so it is rejected
// before any scan rather than demoted to a wildcard.
type ErrSelectionOverflow struct {
	Tier string
}

func (e *ErrSelectionOverflow) Error() string {
	return fmt.Sprintf("query: selection overflows 64-bit SFI for tier %q", e.Tier)
}

// Build maps a selection to one query SFI per tier of the dictionary.
//
// A tier with no selected values yields the wildcard 1. Selected values
// without a prime mapping contribute nothing; callers that want strict
// "unknown value means no match" semantics must validate selections against
// the dictionary themselves.
func Build(sel Selection, dict *prime.Dictionary) ([]uint64, error) {
	tiers := dict.Tiers()
	out := make([]uint64, len(tiers))
	for t, spec := range tiers {
		q, overflowed := sfi.Encode(map[string][]string(sel), spec.Keys, dict.Tier(t))
		if overflowed {
			return nil, &ErrSelectionOverflow{Tier: spec.Name}
		}
		out[t] = q
	}
	return out, nil
}
