package aiassist

import (
	"context"
	"fmt"
	"strings"

	"credentialVaultAPI/internal/models"

	"github.com/google/jsonschema-go/jsonschema"
)

// CredentialMeta is the non-secret description of a credential that prompts
// are built from. Secret values never reach the backend.
type CredentialMeta struct {
	ID      string
	Type    string
	Service string
	Account string
	Notes   string
	Scopes  []string
}

const testConfigSystemPrompt = "You design minimal, read-only HTTP requests that verify an API " +
	"credential is still valid. The secret itself is represented by the literal placeholder $VALUE; " +
	"you never see or invent real secret values. Prefer GET requests against an official, public " +
	"HTTPS API endpoint of the service."

const rotationSystemPrompt = "You explain how to rotate (revoke and re-issue) API credentials for " +
	"well-known services, as concise step-by-step instructions for a developer."

// testConfigSchema describes the GeneratedTestConfig shape.
func testConfigSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"method": {Type: "string", Enum: []any{"GET", "POST", "PUT", "DELETE", "HEAD"}},
			"url":    {Type: "string"},
			"headers": {
				Type:                 "object",
				AdditionalProperties: &jsonschema.Schema{Type: "string"},
			},
			"body": {Type: "string"},
			"expectStatus": {
				AnyOf: []*jsonschema.Schema{
					{Type: "integer"},
					{Type: "array", Items: &jsonschema.Schema{Type: "integer"}},
				},
			},
			"expectBodyContains": {Type: "string"},
			"description":        {Type: "string"},
			"notes":              {Type: "string"},
		},
		Required: []string{"method", "url", "expectStatus"},
	}
}

// rotationInfoSchema describes the RotationInfo shape.
func rotationInfoSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"rotationUrl":   {Type: "string"},
			"instructions":  {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"estimatedTime": {Type: "string"},
			"notes":         {Type: "string"},
		},
		Required: []string{"rotationUrl", "instructions"},
	}
}

func describeCredential(meta CredentialMeta) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- type: %s\n- service: %s\n", meta.Type, meta.Service)
	if meta.Account != "" {
		fmt.Fprintf(&sb, "- account: %s\n", meta.Account)
	}
	if len(meta.Scopes) > 0 {
		fmt.Fprintf(&sb, "- scopes: %s\n", strings.Join(meta.Scopes, ", "))
	}
	if meta.Notes != "" {
		fmt.Fprintf(&sb, "- notes: %s\n", meta.Notes)
	}
	return sb.String()
}

func buildTestConfigPrompt(meta CredentialMeta) string {
	return "Design an HTTP test that verifies this credential is still valid:\n" +
		describeCredential(meta) +
		"\nThe url, headers or body must use the literal placeholder $VALUE where the secret goes. " +
		"The URL must be HTTPS and point at the service's public API. " +
		"expectStatus is the status code (or codes) a valid credential produces."
}

func buildRotationPrompt(meta CredentialMeta) string {
	return "Explain how to rotate this credential:\n" +
		describeCredential(meta) +
		"\nrotationUrl is the HTTPS page or API endpoint where rotation happens; " +
		"instructions are short imperative steps; estimatedTime is a rough human estimate."
}

// GenerateTestConfig asks the backend for a verification test for the
// credential. The returned config has passed schema validation but not yet
// the safety checks applied at the persistence boundary.
func GenerateTestConfig(ctx context.Context, backend Backend, meta CredentialMeta) Result[models.GeneratedTestConfig] {
	return Assist[models.GeneratedTestConfig](ctx, backend, Request{
		Schema:               testConfigSchema(),
		SystemPrompt:         testConfigSystemPrompt,
		Prompt:               buildTestConfigPrompt(meta),
		MaxValidationRetries: DefaultMaxValidationRetries,
	})
}

// GenerateRotationInfo asks the backend for rotation guidance.
func GenerateRotationInfo(ctx context.Context, backend Backend, meta CredentialMeta) Result[models.RotationInfo] {
	return Assist[models.RotationInfo](ctx, backend, Request{
		Schema:               rotationInfoSchema(),
		SystemPrompt:         rotationSystemPrompt,
		Prompt:               buildRotationPrompt(meta),
		MaxValidationRetries: DefaultMaxValidationRetries,
	})
}
