package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// LocalFileStore keeps documents as flat files under a root directory.
// Writes go through an atomic rename so a concurrent reader never observes
// a partially written document.
type LocalFileStore struct {
	Root string
}

// NewLocalFileStore creates a store rooted at dir, creating it if needed.
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &LocalFileStore{Root: dir}, nil
}

// resolve maps a document path onto the root, rejecting traversal outside it.
func (s *LocalFileStore) resolve(path string) (string, error) {
	full := filepath.Join(s.Root, filepath.FromSlash(path))
	root := filepath.Clean(s.Root) + string(filepath.Separator)
	if !strings.HasPrefix(full, root) {
		return "", fmt.Errorf("path %q escapes store root", path)
	}
	return full, nil
}

// Read returns the file content and its modification time.
func (s *LocalFileStore) Read(_ context.Context, path string) (string, string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", "", err
	}

	data, err := os.ReadFile(full)
	if os.IsNotExist(err) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read %q: %w", path, err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	return string(data), info.ModTime().UTC().Format(time.RFC3339Nano), nil
}

// Write replaces the file content atomically (write to a temp file, then
// rename over the target).
func (s *LocalFileStore) Write(_ context.Context, path, content string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o700); err != nil {
		return fmt.Errorf("failed to create parent directory for %q: %w", path, err)
	}
	if err := atomic.WriteFile(full, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
