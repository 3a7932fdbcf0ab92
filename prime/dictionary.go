// Package prime manages the attribute-value-to-prime mapping used for SFI
// encoding.
//
// A Dictionary is immutable once loaded and is partitioned into tiers, each
// with its own prime namespace. The number and layout of tiers is
// configuration, not structure: a flattened dictionary is the degenerate case
// of a single tier spanning all attribute keys.
package prime

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrNilMapping is returned when Load is given a nil raw mapping.
	ErrNilMapping = errors.New("prime: nil raw mapping")

	// ErrNoTiers is returned when Load is given an empty tier layout.
	ErrNoTiers = errors.New("prime: no tiers configured")
)

// ErrDuplicateTier indicates two tiers share a name.
type ErrDuplicateTier struct {
	Name string
}

func (e *ErrDuplicateTier) Error() string {
	return fmt.Sprintf("prime: duplicate tier name %q", e.Name)
}

// TierSpec names a tier and lists the attribute keys it covers.
type TierSpec struct {
	Name string
	Keys []string
}

// SingleTier returns a one-tier layout spanning the given keys, the
// flattened variant used when no master/local style split is wanted.
func SingleTier(name string, keys []string) []TierSpec {
	return []TierSpec{{Name: name, Keys: keys}}
}

// Raw is the parsed ingestion shape: attribute key -> value -> prime.
type Raw map[string]map[string]uint64

// Warning describes an entry dropped during Load. Dropped entries are
// recoverable: loading continues for the remaining entries.
type Warning struct {
	Tier   string
	Key    string
	Value  string
	Prime  uint64
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("tier %q: dropped %s=%s (prime %d): %s", w.Tier, w.Key, w.Value, w.Prime, w.Reason)
}

// Dictionary is an immutable mapping from (attribute key, attribute value)
// to a prime, partitioned into tiers. Construct it with Load; the zero value
// is unusable.
type Dictionary struct {
	tiers  []TierSpec
	byTier []map[string]map[string]uint64
}

// Load validates raw against the tier layout and builds a Dictionary.
//
// Entries whose number is not strictly greater than 1, and entries that
// would reuse a prime already assigned within the same tier, are dropped
// with a warning. When two entries share a prime, the first in tier key
// order, then value order, keeps it; the outcome is the same on every load
// of the same mapping. A nil mapping or an empty tier layout is a hard
// error and leaves no usable dictionary behind.
func Load(raw Raw, tiers []TierSpec) (*Dictionary, []Warning, error) {
	if raw == nil {
		return nil, nil, ErrNilMapping
	}
	if len(tiers) == 0 {
		return nil, nil, ErrNoTiers
	}
	seenNames := make(map[string]struct{}, len(tiers))
	for _, t := range tiers {
		if _, ok := seenNames[t.Name]; ok {
			return nil, nil, &ErrDuplicateTier{Name: t.Name}
		}
		seenNames[t.Name] = struct{}{}
	}

	var warnings []Warning
	d := &Dictionary{
		tiers:  slices.Clone(tiers),
		byTier: make([]map[string]map[string]uint64, len(tiers)),
	}
	for i, tier := range tiers {
		sub := make(map[string]map[string]uint64)
		seen := make(map[uint64]struct{})
		for _, key := range tier.Keys {
			values, ok := raw[key]
			if !ok {
				continue
			}
			// Values are visited in sorted order so duplicate-prime drops
			// are deterministic: within a tier the first (key, value) pair
			// in key order, then value order, keeps the prime.
			for _, value := range slices.Sorted(maps.Keys(values)) {
				p := values[value]
				if p <= 1 {
					warnings = append(warnings, Warning{
						Tier: tier.Name, Key: key, Value: value, Prime: p,
						Reason: "not a positive integer greater than 1",
					})
					continue
				}
				if _, dup := seen[p]; dup {
					warnings = append(warnings, Warning{
						Tier: tier.Name, Key: key, Value: value, Prime: p,
						Reason: "prime already assigned within tier",
					})
					continue
				}
				seen[p] = struct{}{}
				if sub[key] == nil {
					sub[key] = make(map[string]uint64, len(values))
				}
				sub[key][value] = p
			}
		}
		d.byTier[i] = sub
	}
	return d, warnings, nil
}

// Tiers returns a copy of the tier layout.
func (d *Dictionary) Tiers() []TierSpec {
	return slices.Clone(d.tiers)
}

// TierCount returns the number of configured tiers.
func (d *Dictionary) TierCount() int { return len(d.tiers) }

// Prime returns the prime assigned to (key, value) within the given tier,
// or 1 if the tier index is out of range or the pair is unmapped. Unknown
// attributes never block encoding; they simply do not constrain the SFI.
func (d *Dictionary) Prime(tier int, key, value string) uint64 {
	if tier < 0 || tier >= len(d.byTier) {
		return 1
	}
	values, ok := d.byTier[tier][key]
	if !ok {
		return 1
	}
	p, ok := values[value]
	if !ok {
		return 1
	}
	return p
}

// Tier returns a lookup view scoped to one tier. The view satisfies
// sfi.Source.
func (d *Dictionary) Tier(i int) TierView {
	return TierView{d: d, tier: i}
}

// Len returns the number of live entries in the given tier.
func (d *Dictionary) Len(tier int) int {
	if tier < 0 || tier >= len(d.byTier) {
		return 0
	}
	n := 0
	for _, values := range d.byTier[tier] {
		n += len(values)
	}
	return n
}

// TierView is a tier-scoped lookup into a Dictionary.
type TierView struct {
	d    *Dictionary
	tier int
}

// Prime returns the prime for (key, value) in this tier, or 1 if unmapped.
func (v TierView) Prime(key, value string) uint64 {
	return v.d.Prime(v.tier, key, value)
}

// Keys returns the attribute keys this tier covers.
func (v TierView) Keys() []string {
	if v.tier < 0 || v.tier >= len(v.d.tiers) {
		return nil
	}
	return slices.Clone(v.d.tiers[v.tier].Keys)
}
