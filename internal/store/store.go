// Package store provides access to the shared secrets document: a small
// read/write-by-path interface with interchangeable backends, and the
// optimistic-concurrency protocol layered on top of it.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document exists at the given path.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the persistence boundary the vault depends on. Write is
// assumed atomic at the backend level: a concurrent reader sees either the
// old document or the new one, never a partial write.
type DocumentStore interface {
	// Read returns the document content and the backend's last-modified
	// token (which may be empty; the vault versions documents itself).
	Read(ctx context.Context, path string) (content string, modifiedAt string, err error)

	// Write persists the full document content at the path.
	Write(ctx context.Context, path string, content string) error
}
