package store

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/sfindex/sfi"
)

// Filter returns every record whose per-tier SFIs are divisible by the
// corresponding query SFIs, in store order.
//
// A query value of 0 is normalized to 1 (wildcard) before testing. When
// every tier is the wildcard — the common "no filters selected" case — the
// scan short-circuits and returns all records without a single division.
// Records whose tier SFI is the sentinel only match wildcard queries for
// that tier: their true factorization is unknown or empty, so they can never
// prove a constraint.
func (s *Store) Filter(query []uint64) ([]Match, error) {
	if len(query) != len(s.tierNames) {
		return nil, &ErrTierCount{Want: len(s.tierNames), Got: len(query)}
	}

	query = Normalize(query)
	constrained := make([]int, 0, len(query))
	for t, q := range query {
		if q != sfi.Wildcard {
			constrained = append(constrained, t)
		}
	}
	if len(constrained) == 0 {
		out := make([]Match, len(s.records))
		for i, rec := range s.records {
			out[i] = s.match(rec)
		}
		return out, nil
	}

	// Candidate rows must be encodable in every constrained tier; sentinel
	// rows are excluded up front instead of failing a modulo per tier.
	candidates := s.encodable[constrained[0]].Clone()
	for _, t := range constrained[1:] {
		candidates.And(s.encodable[t])
	}

	var out []Match
	it := candidates.Iterator()
	for it.HasNext() {
		rec := s.records[it.Next()]
		if s.divisible(rec, query, constrained) {
			out = append(out, s.match(rec))
		}
	}
	return out, nil
}

// Count is Filter without materializing matches.
func (s *Store) Count(query []uint64) (int, error) {
	if len(query) != len(s.tierNames) {
		return 0, &ErrTierCount{Want: len(s.tierNames), Got: len(query)}
	}
	query = Normalize(query)
	constrained := make([]int, 0, len(query))
	for t, q := range query {
		if q != sfi.Wildcard {
			constrained = append(constrained, t)
		}
	}
	if len(constrained) == 0 {
		return len(s.records), nil
	}
	candidates := s.encodable[constrained[0]].Clone()
	for _, t := range constrained[1:] {
		candidates.And(s.encodable[t])
	}
	n := 0
	it := candidates.Iterator()
	for it.HasNext() {
		if s.divisible(s.records[it.Next()], query, constrained) {
			n++
		}
	}
	return n, nil
}

// MatchBitmap returns the positions of matching rows as a bitmap, for
// callers that intersect results across engines or defer materialization.
func (s *Store) MatchBitmap(query []uint64) (*roaring.Bitmap, error) {
	if len(query) != len(s.tierNames) {
		return nil, &ErrTierCount{Want: len(s.tierNames), Got: len(query)}
	}
	query = Normalize(query)
	constrained := make([]int, 0, len(query))
	for t, q := range query {
		if q != sfi.Wildcard {
			constrained = append(constrained, t)
		}
	}
	if len(constrained) == 0 {
		bm := roaring.New()
		bm.AddRange(0, uint64(len(s.records)))
		return bm, nil
	}
	candidates := s.encodable[constrained[0]].Clone()
	for _, t := range constrained[1:] {
		candidates.And(s.encodable[t])
	}
	out := roaring.New()
	it := candidates.Iterator()
	for it.HasNext() {
		row := it.Next()
		if s.divisible(s.records[row], query, constrained) {
			out.Add(row)
		}
	}
	return out, nil
}

func (s *Store) divisible(rec Record, query []uint64, constrained []int) bool {
	for _, t := range constrained {
		if rec.Tiers[t].Value%query[t] != 0 {
			return false
		}
	}
	return true
}

func (s *Store) match(rec Record) Match {
	sfis := make([]uint64, len(rec.Tiers))
	for t, tier := range rec.Tiers {
		sfis[t] = tier.Value
	}
	return Match{ID: rec.ID, SFIs: sfis}
}

// Normalize maps query value 0 to the wildcard 1 per tier. Zero would
// otherwise be a division by zero or a "match nothing" misread of an empty
// selection. The input slice is not modified.
func Normalize(query []uint64) []uint64 {
	out := append([]uint64(nil), query...)
	for i, q := range out {
		if q == 0 {
			out[i] = sfi.Wildcard
		}
	}
	return out
}
