package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// DiskStore keeps images as plain files in one directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Save(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	safe := SecureFilename(name)
	if safe == "" {
		return "", ErrEmptyFilename
	}

	f, err := os.Create(filepath.Join(s.dir, safe))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", safe, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", safe, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", safe, err)
	}
	return UploadPrefix + safe, nil
}

func (s *DiskStore) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	safe := SecureFilename(name)
	if safe == "" || safe != name {
		return nil, "", ErrImageNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, safe))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", safe, err)
	}
	return f, contentTypeFor(safe), nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
