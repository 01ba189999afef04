package storage

import "io"

// BlobStore holds solution diagrams referenced by questions via their
// solution_asset key.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
