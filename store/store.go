// Package store holds the encoded record collection and implements the
// divisibility-based filter scan over it.
//
// A Store is immutable: a dataset reload builds a fresh Store off to the
// side and the owner installs it with a single atomic pointer swap, so
// in-flight filter scans always see one consistent snapshot and no locking
// is needed on the read path.
package store

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/sfi"
)

// RawRecord is one inventory record before encoding: a unique identifier
// plus its attribute values. Multi-valued attributes carry several values
// for one key.
type RawRecord struct {
	ID         string              `json:"id"`
	Attributes map[string][]string `json:"attributes"`
}

// Record is an encoded record: the identifier and one SFI per tier.
type Record struct {
	ID    string        `json:"id"`
	Tiers []sfi.TierSFI `json:"tiers"`
}

// Match is one filter hit. SFIs carries the record's per-tier values in
// tier order (sentinel 1 for overflowed tiers).
type Match struct {
	ID   string
	SFIs []uint64
}

// Stats summarizes one Build pass.
type Stats struct {
	// Records is the number of records encoded into the store.
	Records int
	// Skipped is the number of malformed raw records dropped.
	Skipped int
	// Overflowed counts per tier how many records hit the 64-bit limit and
	// were demoted to the sentinel.
	Overflowed []int
}

// WarnFunc receives a diagnostic for each dropped or demoted record. It has
// the slog argument convention; pass nil to discard diagnostics.
type WarnFunc func(msg string, args ...any)

// Store is an immutable encoded record collection. Build one per dataset
// snapshot; it is safe for concurrent readers.
type Store struct {
	tierNames []string
	records   []Record

	// encodable[t] holds the row positions whose tier t SFI is neither the
	// sentinel nor overflowed. Rows outside the bitmap can never satisfy a
	// constrained query for that tier, so the scan skips them wholesale.
	encodable []*roaring.Bitmap
}

// Build encodes raw records through the dictionary into a new Store.
//
// Records with an empty id or no attribute section are skipped with a
// warning; they never abort the build. Cost is linear in the total number of
// attribute-value occurrences.
func Build(raws []RawRecord, dict *prime.Dictionary, warn WarnFunc) (*Store, Stats) {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	tiers := dict.Tiers()
	s := &Store{
		tierNames: make([]string, len(tiers)),
		records:   make([]Record, 0, len(raws)),
		encodable: make([]*roaring.Bitmap, len(tiers)),
	}
	stats := Stats{Overflowed: make([]int, len(tiers))}
	for t, spec := range tiers {
		s.tierNames[t] = spec.Name
		s.encodable[t] = roaring.New()
	}

	for i, raw := range raws {
		if raw.ID == "" {
			stats.Skipped++
			warn("skipping record without id", "index", i)
			continue
		}
		if raw.Attributes == nil {
			stats.Skipped++
			warn("skipping record without attributes", "id", raw.ID)
			continue
		}
		rec := Record{ID: raw.ID, Tiers: make([]sfi.TierSFI, len(tiers))}
		row := uint32(len(s.records))
		for t, spec := range tiers {
			value, overflowed := sfi.Encode(raw.Attributes, spec.Keys, dict.Tier(t))
			rec.Tiers[t] = sfi.TierSFI{Value: value, Overflowed: overflowed}
			if overflowed {
				stats.Overflowed[t]++
				warn("record overflows 64-bit SFI, demoted to sentinel",
					"id", raw.ID, "tier", spec.Name)
				continue
			}
			if value != sfi.Sentinel {
				s.encodable[t].Add(row)
			}
		}
		s.records = append(s.records, rec)
	}
	stats.Records = len(s.records)
	return s, stats
}

// FromRecords rebuilds a Store from already encoded records, as read back
// from a snapshot file. Tier names must match the count of each record's
// tier slice.
func FromRecords(tierNames []string, records []Record) (*Store, error) {
	s := &Store{
		tierNames: append([]string(nil), tierNames...),
		records:   append([]Record(nil), records...),
		encodable: make([]*roaring.Bitmap, len(tierNames)),
	}
	for t := range s.encodable {
		s.encodable[t] = roaring.New()
	}
	for i, rec := range s.records {
		if len(rec.Tiers) != len(tierNames) {
			return nil, &ErrTierCount{Want: len(tierNames), Got: len(rec.Tiers)}
		}
		for t, tier := range rec.Tiers {
			if !tier.Overflowed && tier.Value != sfi.Sentinel {
				s.encodable[t].Add(uint32(i))
			}
		}
	}
	return s, nil
}

// Len returns the number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// TierCount returns the number of tiers each record carries.
func (s *Store) TierCount() int { return len(s.tierNames) }

// TierNames returns the tier names in tier order.
func (s *Store) TierNames() []string {
	return append([]string(nil), s.tierNames...)
}

// Records returns the encoded records in store order. The returned slice is
// a copy and safe to retain.
func (s *Store) Records() []Record {
	return append([]Record(nil), s.records...)
}

// EncodableCount returns how many records carry a usable (non-sentinel,
// non-overflowed) SFI for the given tier.
func (s *Store) EncodableCount(tier int) int {
	if tier < 0 || tier >= len(s.encodable) {
		return 0
	}
	return int(s.encodable[tier].GetCardinality())
}

// ErrTierCount indicates a query (or persisted record) whose tier count does
// not match the store layout.
type ErrTierCount struct {
	Want int
	Got  int
}

func (e *ErrTierCount) Error() string {
	return fmt.Sprintf("store: expected %d tiers, got %d", e.Want, e.Got)
}
