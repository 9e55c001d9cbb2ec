package tester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"credentialVaultAPI/internal/models"
	"credentialVaultAPI/internal/safety"
)

// DefaultTimeout is the hard limit on one test execution.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes bounds how much of a response body is read when checking
// expectBodyContains.
const maxBodyBytes = 1 << 20

// Swappable so tests can point the executor at a local listener.
var validateURL = safety.ValidateTestURL

// Executor runs HTTP credential tests. All failure paths are captured into
// the returned TestResult; Execute never returns an error.
type Executor struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewExecutor creates an Executor with the default 30-second timeout.
func NewExecutor() *Executor {
	return &Executor{
		Client:  &http.Client{},
		Timeout: DefaultTimeout,
	}
}

// Execute validates the config's URL, substitutes the secret into the
// request, issues it with a hard timeout, and classifies the outcome.
// Exactly one outbound request is made, or none if URL validation fails.
// No retries happen at this layer.
func (e *Executor) Execute(ctx context.Context, config *models.TestConfig, secret string) models.TestResult {
	start := time.Now()

	result := func(success bool, status int, message string) models.TestResult {
		return models.TestResult{
			Success:    success,
			Status:     status,
			Message:    message,
			TestedAt:   start.UTC().Format(time.RFC3339),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}

	// Re-checked on every execution, never cached.
	if res := validateURL(config.URL); !res.Valid {
		return result(false, 0, res.Error)
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	targetURL := Substitute(config.URL, secret)

	var body io.Reader
	if config.Method == http.MethodPost || config.Method == http.MethodPut {
		body = strings.NewReader(Substitute(config.Body, secret))
	}

	req, err := http.NewRequestWithContext(ctx, config.Method, targetURL, body)
	if err != nil {
		// The error wraps the substituted URL; unwrap so the secret never
		// reaches the message.
		return result(false, 0, fmt.Sprintf("Network error: %v", rootCause(err)))
	}
	for name, value := range config.Headers {
		req.Header.Set(name, Substitute(value, secret))
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result(false, 0, fmt.Sprintf("Request timed out (%ds)", int(e.Timeout.Seconds())))
		}
		return result(false, 0, fmt.Sprintf("Network error: %v", rootCause(err)))
	}
	defer resp.Body.Close()

	if !config.ExpectStatus.Matches(resp.StatusCode) {
		return result(false, resp.StatusCode,
			fmt.Sprintf("Invalid - expected %s, got %d", config.ExpectStatus, resp.StatusCode))
	}

	if config.ExpectBodyContains != "" {
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return result(false, resp.StatusCode, fmt.Sprintf("Network error: %v", err))
		}
		if !strings.Contains(string(respBody), config.ExpectBodyContains) {
			return result(false, resp.StatusCode, "Invalid - response body did not contain expected content")
		}
	}

	return result(true, resp.StatusCode, fmt.Sprintf("Valid - received %d", resp.StatusCode))
}

// rootCause unwraps the url.Error wrapper so the message carries the cause
// without echoing the request URL (which may contain the secret).
func rootCause(err error) error {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}
