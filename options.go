package sfindex

import (
	"github.com/hupe1980/sfindex/codec"
)

type options struct {
	codec        codec.Codec
	logger       *Logger
	metrics      MetricsCollector
	excludedKeys []string
	warnPerSec   float64
	warnBurst    int
	primesDoc    string
	inventoryDoc string
}

// Option configures Engine construction.
type Option func(*options)

// WithCodec configures the codec used for segment documents and snapshots.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging. Pass NoopLogger() to disable
// logging entirely.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics configures a metrics collector for monitoring operations.
func WithMetrics(m MetricsCollector) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithExcludedKeys names attribute keys that must never contribute to SFI
// computation, regardless of whether they appear in the prime dictionary.
// The canonical example is a partition key like "brand", used only for
// dataset segmentation.
func WithExcludedKeys(keys ...string) Option {
	return func(o *options) {
		o.excludedKeys = append(o.excludedKeys, keys...)
	}
}

// WithWarnRate tunes the rate limit applied to per-entry load warnings.
// Defaults to 10 per second with a burst of 20.
func WithWarnRate(perSec float64, burst int) Option {
	return func(o *options) {
		if perSec > 0 && burst > 0 {
			o.warnPerSec = perSec
			o.warnBurst = burst
		}
	}
}

// WithDocumentNames overrides the per-segment document file names fetched by
// LoadSegment. Defaults to "primes.json" and "inventory.json".
func WithDocumentNames(primesDoc, inventoryDoc string) Option {
	return func(o *options) {
		if primesDoc != "" {
			o.primesDoc = primesDoc
		}
		if inventoryDoc != "" {
			o.inventoryDoc = inventoryDoc
		}
	}
}
