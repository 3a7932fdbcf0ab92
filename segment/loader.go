package segment

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sfindex/blobstore"
	"github.com/hupe1980/sfindex/codec"
	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/store"
)

// Default document names within a segment directory.
const (
	DefaultPrimesDoc    = "primes.json"
	DefaultInventoryDoc = "inventory.json"
)

// Segment is the parsed content of one dataset segment, ready to be encoded
// into an engine.
type Segment struct {
	Name     string
	Primes   prime.Raw
	Records  []store.RawRecord
	Warnings []Warning
}

// Loader fetches and parses segment documents through a BlobStore.
type Loader struct {
	bs            blobstore.BlobStore
	codec         codec.Codec
	primesDoc     string
	inventoryDoc  string
	maxConcurrent int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithCodec sets the codec used to decode documents. Defaults to
// codec.Default.
func WithCodec(c codec.Codec) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.codec = c
		}
	}
}

// WithDocumentNames overrides the file names fetched per segment.
func WithDocumentNames(primesDoc, inventoryDoc string) LoaderOption {
	return func(l *Loader) {
		l.primesDoc = primesDoc
		l.inventoryDoc = inventoryDoc
	}
}

// WithMaxConcurrent limits how many segments LoadAll fetches in parallel.
// Defaults to 4.
func WithMaxConcurrent(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxConcurrent = n
		}
	}
}

// NewLoader creates a Loader over the given store.
func NewLoader(bs blobstore.BlobStore, opts ...LoaderOption) *Loader {
	l := &Loader{
		bs:            bs,
		codec:         codec.Default,
		primesDoc:     DefaultPrimesDoc,
		inventoryDoc:  DefaultInventoryDoc,
		maxConcurrent: 4,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and parses one segment. name is the segment directory within
// the blob store (e.g. "BrandA").
func (l *Loader) Load(ctx context.Context, name string) (*Segment, error) {
	primesData, err := l.bs.Fetch(ctx, path.Join(name, l.primesDoc))
	if err != nil {
		return nil, fmt.Errorf("segment %q: fetch primes: %w", name, err)
	}
	raw, warnings, err := ParsePrimes(primesData, l.codec)
	if err != nil {
		return nil, fmt.Errorf("segment %q: %w", name, err)
	}

	invData, err := l.bs.Fetch(ctx, path.Join(name, l.inventoryDoc))
	if err != nil {
		return nil, fmt.Errorf("segment %q: fetch inventory: %w", name, err)
	}
	records, err := ParseInventory(invData, l.codec)
	if err != nil {
		return nil, fmt.Errorf("segment %q: %w", name, err)
	}

	return &Segment{
		Name:     name,
		Primes:   raw,
		Records:  records,
		Warnings: warnings,
	}, nil
}

// LoadAll loads several segments concurrently. Results are returned in the
// order of names; the first error cancels the remaining fetches.
func (l *Loader) LoadAll(ctx context.Context, names []string) ([]*Segment, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxConcurrent)

	out := make([]*Segment, len(names))
	for i, name := range names {
		g.Go(func() error {
			seg, err := l.Load(ctx, name)
			if err != nil {
				return err
			}
			out[i] = seg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
