package aiassist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// DefaultMaxValidationRetries is the number of re-prompts after the first
// attempt. One or two retries with explicit error feedback resolve most
// near-miss outputs without unbounded retry cost.
const DefaultMaxValidationRetries = 2

// DefaultAttemptTimeout bounds one backend call.
const DefaultAttemptTimeout = 30 * time.Second

// Request describes one structured-generation task.
type Request struct {
	Schema               *jsonschema.Schema
	Prompt               string
	SystemPrompt         string
	MaxValidationRetries int           // re-prompts after the first attempt; zero means none
	Timeout              time.Duration // per attempt; defaults to DefaultAttemptTimeout
}

// Result is the outcome of an Assist call. Callers branch on Success;
// Attempts counts every backend call made, including the failed ones.
type Result[T any] struct {
	Success  bool
	Data     T
	Error    string
	Attempts int
}

// isValidationError classifies a failure as validation-class: the model
// produced output that is not valid JSON or does not conform to the schema.
// Only these are worth re-prompting over; network, auth and rate-limit
// failures propagate immediately for outer layers to decide on.
func isValidationError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"json", "parse", "validation"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// extractJSON strips markdown code fences that models habitually wrap JSON
// output in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(raw, "```json"); ok {
		raw = after
	} else if after, ok := strings.CutPrefix(raw, "```"); ok {
		raw = after
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	return strings.TrimSpace(raw)
}

// Assist asks the backend for JSON conforming to req.Schema, validating each
// reply and re-prompting with the validation error appended, up to
// MaxValidationRetries extra attempts. The first conforming reply wins.
func Assist[T any](ctx context.Context, backend Backend, req Request) Result[T] {
	maxRetries := req.MaxValidationRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	resolved, err := req.Schema.Resolve(nil)
	if err != nil {
		return Result[T]{Error: fmt.Sprintf("failed to resolve schema: %v", err)}
	}

	schemaJSON, err := json.Marshal(req.Schema)
	if err != nil {
		return Result[T]{Error: fmt.Sprintf("failed to serialize schema: %v", err)}
	}

	maxAttempts := maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		prompt := req.Prompt + "\n\nRespond with a single JSON object conforming to this JSON Schema, and nothing else:\n" + string(schemaJSON)
		if lastErr != nil {
			prompt += "\n\nYour previous attempt was rejected: " + lastErr.Error() +
				"\nCorrect the output so it conforms to the schema."
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := backend.Complete(attemptCtx, req.SystemPrompt, prompt)
		cancel()
		if err == nil {
			var data T
			err = decodeAndValidate(raw, resolved, &data)
			if err == nil {
				return Result[T]{Success: true, Data: data, Attempts: attempt}
			}
		}

		if !isValidationError(err) || attempt == maxAttempts {
			return Result[T]{Error: err.Error(), Attempts: attempt}
		}
		lastErr = err
	}

	// Unreachable: the loop always returns.
	return Result[T]{Error: "generation failed", Attempts: maxAttempts}
}

// decodeAndValidate parses the model output, checks it against the schema,
// and unmarshals it into the target type. Every failure it returns is
// validation-class by construction.
func decodeAndValidate[T any](raw string, resolved *jsonschema.Resolved, target *T) error {
	cleaned := extractJSON(raw)

	var instance any
	if err := json.Unmarshal([]byte(cleaned), &instance); err != nil {
		return fmt.Errorf("JSON parse error: %v", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return fmt.Errorf("JSON decode error: %v", err)
	}
	return nil
}
