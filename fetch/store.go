// Package fetch resolves network SVG paths to local cached files.
package fetch

import "context"

// Entry points at a local file produced by a store lookup.
type Entry struct {
	Path string
}

// Store is the cache-backed retrieval collaborator. Fetch resolves a
// source path to a local file; ok reports whether content was found.
// ok=false with a nil error is a clean miss (the source has nothing),
// not a failure. Transport failures come back as errors.
type Store interface {
	Fetch(ctx context.Context, path string) (entry Entry, ok bool, err error)
}
