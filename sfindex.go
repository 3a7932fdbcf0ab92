package sfindex

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/sfindex/blobstore"
	"github.com/hupe1980/sfindex/codec"
	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/query"
	"github.com/hupe1980/sfindex/segment"
	"github.com/hupe1980/sfindex/sfi"
	"github.com/hupe1980/sfindex/snapshot"
	"github.com/hupe1980/sfindex/store"
)

// Re-exported types, so common use of the engine needs only this package.
type (
	// TierSpec names a tier and lists the attribute keys it covers.
	TierSpec = prime.TierSpec

	// RawRecord is one record before encoding: id plus attribute values.
	RawRecord = store.RawRecord

	// Match is one filter hit: record id plus its per-tier SFIs.
	Match = store.Match

	// Selection maps attribute keys to selected filter values.
	Selection = query.Selection
)

// SingleTier returns a one-tier layout spanning the given keys.
func SingleTier(name string, keys []string) []TierSpec {
	return prime.SingleTier(name, keys)
}

// state is one immutable dataset snapshot: the dictionary and the store
// built from it. It is swapped wholesale on reload so readers never observe
// a half-rebuilt dataset.
type state struct {
	dict *prime.Dictionary
	st   *store.Store
}

// Engine encodes records against a prime dictionary and filters them by SFI
// divisibility.
//
// Loads are serialized internally and install their result with a single
// atomic swap; Filter and BuildQuery are safe to call concurrently with a
// load and always see the previous complete snapshot until the new one is
// installed.
type Engine struct {
	tiers        []prime.TierSpec
	codec        codec.Codec
	logger       *Logger
	metrics      MetricsCollector
	warnPerSec   float64
	warnBurst    int
	primesDoc    string
	inventoryDoc string

	loadMu sync.Mutex
	state  atomic.Pointer[state]
}

// New creates an Engine with the given tier layout.
//
// Keys named via WithExcludedKeys are removed from every tier before any
// encoding happens; an excluded key never constrains an SFI even if the
// dictionary maps it.
func New(tiers []TierSpec, opts ...Option) (*Engine, error) {
	o := options{
		codec:        codec.Default,
		logger:       NewLogger(nil),
		metrics:      NoopMetricsCollector{},
		warnPerSec:   10,
		warnBurst:    20,
		primesDoc:    segment.DefaultPrimesDoc,
		inventoryDoc: segment.DefaultInventoryDoc,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if len(tiers) == 0 {
		return nil, ErrNoTiers
	}

	effective := make([]prime.TierSpec, len(tiers))
	for i, t := range tiers {
		keys := slices.Clone(t.Keys)
		keys = slices.DeleteFunc(keys, func(k string) bool {
			return slices.Contains(o.excludedKeys, k)
		})
		effective[i] = prime.TierSpec{Name: t.Name, Keys: keys}
	}

	return &Engine{
		tiers:        effective,
		codec:        o.codec,
		logger:       o.logger,
		metrics:      o.metrics,
		warnPerSec:   o.warnPerSec,
		warnBurst:    o.warnBurst,
		primesDoc:    o.primesDoc,
		inventoryDoc: o.inventoryDoc,
	}, nil
}

// Tiers returns the effective tier layout (after key exclusions).
func (e *Engine) Tiers() []TierSpec {
	return slices.Clone(e.tiers)
}

// Len returns the number of records in the current snapshot, 0 if none.
func (e *Engine) Len() int {
	s := e.state.Load()
	if s == nil {
		return 0
	}
	return s.st.Len()
}

// Load builds a new dataset snapshot from already parsed structures and
// installs it atomically. On any error the previous snapshot stays in
// effect untouched.
func (e *Engine) Load(raw prime.Raw, records []RawRecord) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.load(context.Background(), raw, records)
}

func (e *Engine) load(ctx context.Context, raw prime.Raw, records []RawRecord) error {
	start := time.Now()

	dict, warnings, err := prime.Load(raw, e.tiers)
	if err != nil {
		e.metrics.RecordRebuild(0, 0, time.Since(start), err)
		e.logger.LogRebuild(ctx, 0, 0, 0, err)
		return fmt.Errorf("load dictionary: %w", err)
	}
	wl := NewWarnLimiter(e.logger, e.warnPerSec, e.warnBurst)
	for _, w := range warnings {
		wl.Warn("dropped prime entry",
			"tier", w.Tier, "key", w.Key, "value", w.Value,
			"prime", w.Prime, "reason", w.Reason)
	}

	st, stats := store.Build(records, dict, wl.Warn)
	wl.Flush("further load warnings suppressed")

	e.state.Store(&state{dict: dict, st: st})

	overflowed := 0
	for _, n := range stats.Overflowed {
		overflowed += n
	}
	e.metrics.RecordRebuild(stats.Records, stats.Skipped, time.Since(start), nil)
	e.logger.LogRebuild(ctx, stats.Records, stats.Skipped, overflowed, nil)
	return nil
}

// LoadSegment fetches a segment's primes and inventory documents from the
// blob store, parses them, and loads the result. Partial loads are never
// observable: a fetch or parse failure leaves the previous snapshot in
// effect.
func (e *Engine) LoadSegment(ctx context.Context, bs blobstore.BlobStore, name string) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	start := time.Now()
	loader := segment.NewLoader(bs,
		segment.WithCodec(e.codec),
		segment.WithDocumentNames(e.primesDoc, e.inventoryDoc),
	)
	seg, err := loader.Load(ctx, name)
	e.metrics.RecordSegmentLoad(lenRecords(seg), time.Since(start), err)
	if err != nil {
		e.logger.WithSegment(name).ErrorContext(ctx, "segment load failed", "error", err)
		return err
	}

	logger := e.logger.WithSegment(name)
	wl := NewWarnLimiter(logger, e.warnPerSec, e.warnBurst)
	for _, w := range seg.Warnings {
		wl.Warn("dropped prime entry",
			"key", w.Key, "value", w.Value, "raw", w.Raw, "reason", w.Reason)
	}
	wl.Flush("further parse warnings suppressed")

	return e.load(ctx, seg.Primes, seg.Records)
}

func lenRecords(seg *segment.Segment) int {
	if seg == nil {
		return 0
	}
	return len(seg.Records)
}

// Filter returns every record whose per-tier SFIs are divisible by the
// corresponding query values, in store order. Query value 0 (and 1) acts as
// the wildcard for its tier.
func (e *Engine) Filter(ctx context.Context, q []uint64) ([]Match, error) {
	s := e.state.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}

	start := time.Now()
	matches, err := s.st.Filter(q)
	wildcard := allWildcard(q)
	e.metrics.RecordFilter(len(matches), wildcard, time.Since(start), err)
	e.logger.LogFilter(ctx, len(matches), wildcard, err)
	return matches, err
}

// FilterSelection builds a query from the selection and filters with it.
func (e *Engine) FilterSelection(ctx context.Context, sel Selection) ([]Match, error) {
	q, err := e.BuildQuery(sel)
	if err != nil {
		return nil, err
	}
	return e.Filter(ctx, q)
}

// BuildQuery maps selected attribute values to one query SFI per tier using
// the same encoding rule as records. An empty selection yields all
// wildcards.
func (e *Engine) BuildQuery(sel Selection) ([]uint64, error) {
	s := e.state.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	if s.dict == nil {
		return nil, ErrNoDictionary
	}
	return query.Build(sel, s.dict)
}

// SaveSnapshot writes the current encoded store to w.
func (e *Engine) SaveSnapshot(w io.Writer, opts ...snapshot.Option) error {
	s := e.state.Load()
	if s == nil {
		return ErrNotLoaded
	}
	opts = append([]snapshot.Option{snapshot.WithCodec(e.codec)}, opts...)
	return snapshot.Save(w, s.st, opts...)
}

// LoadSnapshot restores an encoded store written by SaveSnapshot and
// installs it atomically.
//
// Snapshots carry records only: after a restore, Filter works with
// externally built queries, while BuildQuery returns ErrNoDictionary until
// a full Load/LoadSegment supplies a dictionary again.
func (e *Engine) LoadSnapshot(r io.Reader) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	st, err := snapshot.Load(r)
	if err != nil {
		return err
	}
	if st.TierCount() != len(e.tiers) {
		return &store.ErrTierCount{Want: len(e.tiers), Got: st.TierCount()}
	}
	want := make([]string, len(e.tiers))
	for i, t := range e.tiers {
		want[i] = t.Name
	}
	if !slices.Equal(st.TierNames(), want) {
		return &ErrTierMismatch{Want: want, Got: st.TierNames()}
	}
	e.state.Store(&state{dict: nil, st: st})
	e.logger.Info("snapshot restored", "records", st.Len())
	return nil
}

func allWildcard(q []uint64) bool {
	for _, v := range q {
		if v > sfi.Wildcard {
			return false
		}
	}
	return true
}
