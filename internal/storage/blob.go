package storage

import "io"

// BlobStore holds uploaded course assets: lesson audio, cover images,
// announcement banners.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
	PublicURL(key string) string
}
