// Package blobstore abstracts where segment documents (prime dictionaries
// and inventory files) are fetched from.
//
// Documents are small JSON files read wholesale on a segment load, so the
// interface is a single Fetch rather than random-access reads. Local
// filesystem and in-memory stores live here; S3-compatible backends are in
// the minio and s3 subpackages.
package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore fetches named immutable documents.
type BlobStore interface {
	// Fetch returns the full contents of the named blob.
	Fetch(ctx context.Context, name string) ([]byte, error)
}
