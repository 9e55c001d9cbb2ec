package mocks

import "context"

// MockBackend implements aiassist.Backend for tests: it replays a fixed
// sequence of replies/errors and records the prompts it was sent.
type MockBackend struct {
	Replies []string
	Errs    []error

	Calls   int
	Prompts []string
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) Complete(_ context.Context, _ string, prompt string) (string, error) {
	i := m.Calls
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Replies) {
		return m.Replies[i], nil
	}
	return "{}", nil
}
