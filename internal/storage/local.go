package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads below a directory that the HTTP server exposes read-only.
type LocalStore struct {
	dir          string
	publicPrefix string
	maxBytes     int64
}

// NewLocalStore creates the upload directory when needed.
func NewLocalStore(dir, publicPrefix string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:          dir,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		maxBytes:     maxBytes,
	}, nil
}

// Dir returns the root directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// PublicPrefix returns the URL prefix files are served under.
func (s *LocalStore) PublicPrefix() string {
	return s.publicPrefix
}

// Save implements Store.
func (s *LocalStore) Save(_ context.Context, kind Kind, originalName string, body io.Reader) (*File, error) {
	f, err := prepare(kind, originalName, body, s.maxBytes)
	if err != nil {
		return nil, err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(f.Key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(target, f.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}

	f.Path = path.Join(s.publicPrefix, f.Key)
	return f, nil
}

// Delete implements Store.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != key {
		return fmt.Errorf("invalid upload key %q", key)
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
