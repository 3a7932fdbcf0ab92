// Package segment parses the two ingestion documents of a dataset segment —
// the prime dictionary and the inventory — and loads them through a
// blobstore.
//
// A segment is the unit of dataset partitioning (one per brand in the
// reference data layout): each segment carries its own prime namespace, so
// SFIs from different segments are never comparable.
package segment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/hupe1980/sfindex/codec"
	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/store"
)

// ErrMissingSection is returned when a primes document lacks the required
// top-level attribute_to_prime section. This is fatal to the load; a
// dictionary must never be silently treated as ready while empty.
var ErrMissingSection = errors.New(`segment: primes document missing "attribute_to_prime" section`)

// ErrBadDocument wraps a decode failure of a named document.
type ErrBadDocument struct {
	Doc   string
	cause error
}

func (e *ErrBadDocument) Error() string {
	return fmt.Sprintf("segment: malformed document %q: %v", e.Doc, e.cause)
}

func (e *ErrBadDocument) Unwrap() error { return e.cause }

// Warning describes an individual primes entry dropped during parsing.
type Warning struct {
	Key    string
	Value  string
	Raw    string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("dropped %s=%s (%q): %s", w.Key, w.Value, w.Raw, w.Reason)
}

// primesDoc is the wire shape of a primes document. Numbers are decoded as
// json.Number so one malformed entry does not fail the whole document.
type primesDoc struct {
	AttributeToPrime map[string]map[string]json.Number `json:"attribute_to_prime"`
}

// ParsePrimes decodes a primes document into the raw mapping accepted by
// prime.Load.
//
// A missing attribute_to_prime section is a hard error. Entries whose value
// is not a positive integer greater than 1 are dropped with a warning and
// parsing continues.
func ParsePrimes(data []byte, c codec.Codec) (prime.Raw, []Warning, error) {
	if c == nil {
		c = codec.Default
	}
	var doc primesDoc
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, nil, &ErrBadDocument{Doc: "primes", cause: err}
	}
	if doc.AttributeToPrime == nil {
		return nil, nil, ErrMissingSection
	}

	var warnings []Warning
	raw := make(prime.Raw, len(doc.AttributeToPrime))
	for key, values := range doc.AttributeToPrime {
		m := make(map[string]uint64, len(values))
		for value, num := range values {
			p, err := strconv.ParseUint(num.String(), 10, 64)
			if err != nil {
				warnings = append(warnings, Warning{
					Key: key, Value: value, Raw: num.String(),
					Reason: "not an unsigned integer",
				})
				continue
			}
			if p <= 1 {
				warnings = append(warnings, Warning{
					Key: key, Value: value, Raw: num.String(),
					Reason: "must be greater than 1",
				})
				continue
			}
			m[value] = p
		}
		raw[key] = m
	}
	return raw, warnings, nil
}

// Values is an attribute value list that decodes from either a single JSON
// string or an array of strings, as both forms occur in inventory documents.
type Values []string

// UnmarshalJSON implements json.Unmarshaler.
func (v *Values) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Values{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*v = Values(list)
	return nil
}

// inventoryRecord is the wire shape of one inventory entry. Fields beyond
// id and attributes (display name etc) belong to the presentation layer and
// are ignored here.
type inventoryRecord struct {
	ID         string            `json:"id"`
	Attributes map[string]Values `json:"attributes"`
}

// ParseInventory decodes an inventory document into raw records.
// Per-record validation (missing id, missing attributes) happens later
// during the store build, so that skips are counted and warned in one place.
func ParseInventory(data []byte, c codec.Codec) ([]store.RawRecord, error) {
	if c == nil {
		c = codec.Default
	}
	var docs []inventoryRecord
	if err := c.Unmarshal(data, &docs); err != nil {
		return nil, &ErrBadDocument{Doc: "inventory", cause: err}
	}
	out := make([]store.RawRecord, len(docs))
	for i, doc := range docs {
		var attrs map[string][]string
		if doc.Attributes != nil {
			attrs = make(map[string][]string, len(doc.Attributes))
			for k, v := range doc.Attributes {
				attrs[k] = []string(v)
			}
		}
		out[i] = store.RawRecord{ID: doc.ID, Attributes: attrs}
	}
	return out, nil
}
