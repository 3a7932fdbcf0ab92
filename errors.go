package sfindex

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTiers is returned by New when the tier layout is empty.
	ErrNoTiers = errors.New("sfindex: no tiers configured")

	// ErrNotLoaded is returned when filtering or query building is attempted
	// before any dataset has been loaded.
	ErrNotLoaded = errors.New("sfindex: no dataset loaded")

	// ErrNoDictionary is returned by BuildQuery after a snapshot restore:
	// snapshots carry encoded records only, not the prime dictionary, so
	// queries must be built elsewhere (or the segment reloaded).
	ErrNoDictionary = errors.New("sfindex: no prime dictionary available")
)

// ErrTierMismatch indicates a snapshot whose tier layout differs from the
// engine's configured tiers.
type ErrTierMismatch struct {
	Want []string
	Got  []string
}

func (e *ErrTierMismatch) Error() string {
	return fmt.Sprintf("sfindex: snapshot tier layout %v does not match configured %v", e.Got, e.Want)
}
