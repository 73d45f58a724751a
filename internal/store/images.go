package store

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrEmptyFilename is returned when a name sanitizes to nothing.
	ErrEmptyFilename = errors.New("empty filename")
	// ErrImageNotFound is returned by Open for unknown names.
	ErrImageNotFound = errors.New("image not found")
)

// ImageStore persists uploaded images under a flat namespace. Saving an
// existing name overwrites it.
type ImageStore interface {
	// Save writes r under the sanitized form of name and returns the
	// relative reference "uploads/<sanitized>".
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Open returns the stored bytes for a sanitized name and its content type.
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}
