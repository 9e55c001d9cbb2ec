package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// FileServerStore talks to the external authenticated file service. The
// service exposes read/write/delete/list over flat paths; this client covers
// the DocumentStore interface plus the extra operations for completeness.
type FileServerStore struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewFileServerStore creates a client for the file service at baseURL,
// authenticating every request with the given bearer token.
func NewFileServerStore(baseURL, token string) *FileServerStore {
	return &FileServerStore{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// fileResponse is the read payload: the file content plus the server's
// last-modified timestamp.
type fileResponse struct {
	Content    string `json:"content"`
	ModifiedAt string `json:"modifiedAt,omitempty"`
}

type writeRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (s *FileServerStore) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.BaseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Read fetches a file's content and modification timestamp.
func (s *FileServerStore) Read(ctx context.Context, path string) (string, string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/files?path="+url.QueryEscape(path), nil)
	if err != nil {
		return "", "", err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %q from file server: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("file server returned %d reading %q", resp.StatusCode, path)
	}

	var file fileResponse
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", "", fmt.Errorf("failed to decode file server response: %w", err)
	}
	return file.Content, file.ModifiedAt, nil
}

// Write persists the full content at the path. The server replaces the file
// atomically.
func (s *FileServerStore) Write(ctx context.Context, path, content string) error {
	payload, err := json.Marshal(writeRequest{Path: path, Content: content})
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodPut, "/files", bytes.NewReader(payload))
	if err != nil {
		return err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to write %q to file server: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("file server returned %d writing %q", resp.StatusCode, path)
	}
	return nil
}

// Delete removes the file at the path. Deleting a missing file is not an error.
func (s *FileServerStore) Delete(ctx context.Context, path string) error {
	req, err := s.newRequest(ctx, http.MethodDelete, "/files?path="+url.QueryEscape(path), nil)
	if err != nil {
		return err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete %q from file server: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("file server returned %d deleting %q", resp.StatusCode, path)
	}
	return nil
}

// List returns the paths stored under the given prefix.
func (s *FileServerStore) List(ctx context.Context, prefix string) ([]string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/files/list?prefix="+url.QueryEscape(prefix), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q on file server: %w", prefix, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file server returned %d listing %q", resp.StatusCode, prefix)
	}

	var listing struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode file server listing: %w", err)
	}
	return listing.Files, nil
}
