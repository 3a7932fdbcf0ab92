// Package sfindex encodes multi-valued categorical attributes into one
// square-free integer (SFI) per record and answers attribute filters with a
// single integer division per record.
//
// Each distinct (attribute key, attribute value) pair is assigned a unique
// small prime; a record's SFI is the product of the primes of all values it
// carries. A query built from selected values divides a record's SFI exactly
// iff the record carries every selected value — the prime-product trick IS
// the index, no inverted index is needed.
//
// # Quick Start
//
//	eng, _ := sfindex.New(sfindex.SingleTier("attrs", []string{"color", "size"}))
//	_ = eng.Load(prime.Raw{
//	    "color": {"red": 2, "blue": 3},
//	    "size":  {"S": 5, "M": 7},
//	}, []sfindex.RawRecord{
//	    {ID: "A", Attributes: map[string][]string{"color": {"red"}, "size": {"S"}}},
//	    {ID: "B", Attributes: map[string][]string{"color": {"blue"}, "size": {"M"}}},
//	})
//
//	q, _ := eng.BuildQuery(sfindex.Selection{"color": {"red"}}) // q = [2]
//	matches, _ := eng.Filter(ctx, q)                            // -> [A]
//
// Attribute keys can be partitioned into tiers, each with its own prime
// namespace and its own SFI per record; a query constrains every tier
// jointly. The tier layout is configuration, not structure — one flattened
// tier is the common case.
//
// # Loading and Concurrency
//
// The engine is single-writer: Load* calls are serialized internally and
// build the replacement store off to the side, installing it with one
// atomic pointer swap. Filter never blocks and always sees a fully
// consistent snapshot, which makes blue/green dataset reloads safe without
// locks on the read path.
//
// # Overflow
//
// A record whose prime product would exceed 64 bits is never silently
// wrapped: it is demoted to the sentinel SFI (1), logged, and excluded from
// all non-wildcard matches for that tier.
package sfindex
