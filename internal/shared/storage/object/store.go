package object

import (
	"context"
	"io"
)

// BlobStore defines the contract for key-addressed binary objects.
// Put returns a public-style URL for the stored object; keys embedded in
// those URLs round-trip through cvs.ExtractKeyFromURL.
type BlobStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (url string, sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
