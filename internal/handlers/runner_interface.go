package handlers

import (
	"context"

	"credentialVaultAPI/internal/models"
)

// TestRunner defines the executor behaviour TestHandler depends on so it can
// be mocked in tests.
type TestRunner interface {
	Execute(ctx context.Context, config *models.TestConfig, secret string) models.TestResult
}
