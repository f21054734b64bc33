package storage

import "io"

// BlobStore holds uploaded source material (documents the user augments a
// generation request with) and cached assets.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
