package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It is the most portable option and handles everything the ingestion
// formats contain (string maps, string-or-array attribute values via their
// own UnmarshalJSON). Prefer it when a zero-dependency decode path matters
// more than throughput.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used when none is configured.
//
// This affects newly written snapshots only; existing files record their
// codec name and are decoded with the matching codec.
var Default Codec = GoJSON{}
