package mocks

import (
	"context"

	"credentialVaultAPI/internal/store"
)

// MockDocumentStore implements store.DocumentStore for tests.
type MockDocumentStore struct {
	// call flags for assertions
	ReadCalled  bool
	WriteCalled bool
	Writes      int

	// forceable errors (set in tests)
	ReadErr  error
	WriteErr error

	// Key - document path
	Documents map[string]string
}

func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		Documents: make(map[string]string),
	}
}

func (m *MockDocumentStore) Read(_ context.Context, path string) (string, string, error) {
	m.ReadCalled = true
	if m.ReadErr != nil {
		return "", "", m.ReadErr
	}
	content, ok := m.Documents[path]
	if !ok {
		return "", "", store.ErrNotFound
	}
	return content, "", nil
}

func (m *MockDocumentStore) Write(_ context.Context, path, content string) error {
	m.WriteCalled = true
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes++
	m.Documents[path] = content
	return nil
}
