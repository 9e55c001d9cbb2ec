package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Placeholder is the token replaced with the secret value at execution time.
const Placeholder = "$VALUE"

var (
	ErrMissingType    = errors.New("credential must have a type")
	ErrMissingService = errors.New("credential must have a service")
)

// StatusSet is the expected-status specification of a test: either a single
// status code or a set of acceptable codes. It unmarshals from both JSON
// forms (`200` and `[200, 201]`) and marshals a single code back as a scalar.
type StatusSet []int

// Matches reports whether the given status code is acceptable.
func (s StatusSet) Matches(code int) bool {
	return slices.Contains(s, code)
}

func (s *StatusSet) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StatusSet{single}
		return nil
	}
	var set []int
	if err := json.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("expectStatus must be a status code or an array of status codes")
	}
	*s = StatusSet(set)
	return nil
}

func (s StatusSet) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]int(s))
}

// String renders the expectation for result messages, e.g. "200" or "200 or 201".
func (s StatusSet) String() string {
	parts := make([]string, len(s))
	for i, code := range s {
		parts[i] = fmt.Sprintf("%d", code)
	}
	return strings.Join(parts, " or ")
}

// TestConfig is a declarative HTTP test used to verify a credential is still
// valid. URL, headers and body may contain the $VALUE placeholder; the secret
// is substituted only at execution time.
type TestConfig struct {
	Method             string            `json:"method"`
	URL                string            `json:"url"`
	Headers            map[string]string `json:"headers,omitempty"`
	Body               string            `json:"body,omitempty"`
	ExpectStatus       StatusSet         `json:"expectStatus"`
	ExpectBodyContains string            `json:"expectBodyContains,omitempty"`
}

var allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD"}

// Validate checks structural validity: a supported method, a URL, and at
// least one expected status code. URL safety is checked separately.
func (t *TestConfig) Validate() error {
	if !slices.Contains(allowedMethods, t.Method) {
		return fmt.Errorf("method must be one of %s", strings.Join(allowedMethods, ", "))
	}
	if t.URL == "" {
		return errors.New("test config must have a url")
	}
	if len(t.ExpectStatus) == 0 {
		return errors.New("test config must have at least one expected status")
	}
	return nil
}

// HasPlaceholder reports whether the $VALUE token appears anywhere in the
// url, headers or body. A config without it does not actually exercise the
// secret and is rejected at the persistence boundary.
func (t *TestConfig) HasPlaceholder() bool {
	if strings.Contains(t.URL, Placeholder) || strings.Contains(t.Body, Placeholder) {
		return true
	}
	for _, v := range t.Headers {
		if strings.Contains(v, Placeholder) {
			return true
		}
	}
	return false
}

// IsSafeMethod reports whether the method is side-effect free on the remote
// service. Anything else requires an explicit confirmation from the caller.
func (t *TestConfig) IsSafeMethod() bool {
	return t.Method == "GET" || t.Method == "HEAD"
}

// TestResult is the outcome of one test execution. Immutable once produced;
// the newest result overwrites Credential.LastTestResult.
type TestResult struct {
	Success    bool   `json:"success"`
	Status     int    `json:"status"`
	Message    string `json:"message"`
	TestedAt   string `json:"testedAt"`
	DurationMs int64  `json:"durationMs"`
}

// GeneratedTestConfig is the shape produced by the AI assist path: a
// TestConfig plus descriptive fields that are stripped before persistence.
type GeneratedTestConfig struct {
	TestConfig
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// RotationInfo is AI-generated guidance for rotating a credential.
type RotationInfo struct {
	RotationURL   string   `json:"rotationUrl"`
	Instructions  []string `json:"instructions"`
	EstimatedTime string   `json:"estimatedTime,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}
