package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credentialVaultAPI/internal/models"
)

// defaultIOTimeout bounds each document read and write so a misbehaving
// backend cannot hang a request indefinitely.
const defaultIOTimeout = 10 * time.Second

// Vault is the optimistic-concurrency read/modify/write protocol over the
// secrets document. It is stateless between calls: every operation re-reads
// the document from the store, so concurrent editors only coordinate through
// the version token in the document's _meta block.
type Vault struct {
	Store     DocumentStore
	Path      string
	IOTimeout time.Duration
}

// NewVault creates a Vault over the given store and document path.
func NewVault(s DocumentStore, path string) *Vault {
	return &Vault{Store: s, Path: path, IOTimeout: defaultIOTimeout}
}

// MutationResult is the outcome of one Mutate call. Exactly one of the three
// states holds: Committed, Conflict, or Err != nil.
type MutationResult struct {
	Committed bool
	Conflict  bool
	// Version is the new version token after a commit, or the currently
	// stored version on a conflict (so the caller can re-read and retry).
	Version string
	Err     error
}

func (v *Vault) ioContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := v.IOTimeout
	if timeout <= 0 {
		timeout = defaultIOTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// Load reads and parses the document, returning it together with its version
// token. A missing document is returned as a fresh empty one so first use
// does not require manual provisioning.
func (v *Vault) Load(ctx context.Context) (*models.SecretsDocument, string, error) {
	rctx, cancel := v.ioContext(ctx)
	defer cancel()

	content, _, err := v.Store.Read(rctx, v.Path)
	if errors.Is(err, ErrNotFound) {
		// A missing document carries the empty version token. The token is
		// stable across reads, so a bootstrap mutation can still pass the
		// version check; the first commit stamps a real one.
		doc := models.NewSecretsDocument()
		doc.Meta.Updated = ""
		return doc, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read secrets document: %w", err)
	}

	var doc models.SecretsDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, "", fmt.Errorf("failed to parse secrets document: %w", err)
	}
	return &doc, doc.Meta.Updated, nil
}

// Mutate runs the read/check/apply/write cycle. The document is re-read and
// its version compared against expectedVersion; on mismatch the mutation is
// abandoned without writing and the current version is reported back. On
// match, apply edits the document in place, a new version is stamped, and
// the whole document is written in a single call.
//
// This is staleness detection, not a lock: two writers racing between the
// read and the write can both pass the check. The backends' whole-document
// atomic writes keep the file intact in that case; the residual race is
// accepted for a single-operator tool.
func (v *Vault) Mutate(ctx context.Context, expectedVersion string, apply func(doc *models.SecretsDocument) error) MutationResult {
	doc, version, err := v.Load(ctx)
	if err != nil {
		return MutationResult{Err: err}
	}

	if version != expectedVersion {
		return MutationResult{Conflict: true, Version: version}
	}

	if err := apply(doc); err != nil {
		return MutationResult{Err: err}
	}

	newVersion := doc.Touch()
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return MutationResult{Err: fmt.Errorf("failed to serialize secrets document: %w", err)}
	}

	wctx, cancel := v.ioContext(ctx)
	defer cancel()
	if err := v.Store.Write(wctx, v.Path, string(content)); err != nil {
		return MutationResult{Err: fmt.Errorf("failed to write secrets document: %w", err)}
	}

	return MutationResult{Committed: true, Version: newVersion}
}

// GetCredential returns one credential plus the document version the caller
// must present on a subsequent mutation.
func (v *Vault) GetCredential(ctx context.Context, id string) (*models.Credential, string, error) {
	doc, version, err := v.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	cred, ok := doc.Credentials[id]
	if !ok {
		return nil, version, ErrNotFound
	}
	return cred, version, nil
}
