package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jobassist-backend/internal/shared/storage/object"
)

// Store implements BlobStore using the local filesystem. URLs use a synthetic
// host so stored URLs keep the same shape as S3 ones.
type Store struct {
	baseDir string
}

// New creates a new local blob store rooted at baseDir.
func New(baseDir string) object.BlobStore {
	return &Store{baseDir: baseDir}
}

// Put writes the reader contents to disk under the given key.
func (s *Store) Put(ctx context.Context, key string, _ string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	clean, err := cleanKey(key)
	if err != nil {
		return "", 0, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		return "", 0, fmt.Errorf("write body: %w", err)
	}

	return fmt.Sprintf("https://local.blobstore/%s", clean), size, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("local open key=%s: %w", clean, err)
	}
	return f, nil
}

// Delete removes a stored object by key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean, err := cleanKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(clean))); err != nil {
		return fmt.Errorf("local delete key=%s: %w", clean, err)
	}
	return nil
}

func cleanKey(key string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return clean, nil
}

var _ object.BlobStore = (*Store)(nil)
