package mocks

import (
	"context"

	"credentialVaultAPI/internal/models"
)

// MockRunner implements handlers.TestRunner for tests.
type MockRunner struct {
	ExecuteCalled bool

	// captured arguments
	LastConfig *models.TestConfig
	LastSecret string

	// canned result
	Result models.TestResult
}

func (m *MockRunner) Execute(_ context.Context, config *models.TestConfig, secret string) models.TestResult {
	m.ExecuteCalled = true
	m.LastConfig = config
	m.LastSecret = secret
	return m.Result
}
