// Package aiassist generates schema-conformant JSON (test configs, rotation
// guidance) from a generative backend, retrying with validation feedback
// when the model's output does not conform.
package aiassist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Backend is one generative model provider. Complete sends a single prompt
// and returns the raw text of the model's reply.
type Backend interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ErrNotConfigured is returned when no backend credential is present in the
// environment. Callers check IsConfigured first to fail fast.
var ErrNotConfigured = errors.New("no generation backend configured (set ANTHROPIC_API_KEY or OPENAI_API_KEY)")

// IsConfigured reports whether a generation-backend credential is present.
func IsConfigured() bool {
	return os.Getenv("ANTHROPIC_API_KEY") != "" || os.Getenv("OPENAI_API_KEY") != ""
}

// BackendFromEnv builds a backend from environment credentials, preferring
// Anthropic when both are set. AI_MODEL overrides the default model.
func BackendFromEnv() (Backend, error) {
	model := os.Getenv("AI_MODEL")
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return NewAnthropicBackend(key, model), nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAIBackend(key, model), nil
	}
	return nil, ErrNotConfigured
}

// AnthropicBackend calls the Anthropic messages API.
type AnthropicBackend struct {
	APIKey     string
	Model      string
	BaseURL    string
	httpClient *http.Client
}

// NewAnthropicBackend creates an Anthropic backend.
func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicBackend{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://api.anthropic.com",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (b *AnthropicBackend) Name() string { return "anthropic" }

func (b *AnthropicBackend) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	payload := map[string]any{
		"model":      b.Model,
		"max_tokens": 2048,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if systemPrompt != "" {
		payload["system"] = systemPrompt
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("anthropic API returned %d: %s", resp.StatusCode, msg)
	}

	var reply struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	for _, block := range reply.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic response contained no text block")
}

// OpenAIBackend calls the OpenAI chat completions API.
type OpenAIBackend struct {
	APIKey     string
	Model      string
	BaseURL    string
	httpClient *http.Client
}

// NewOpenAIBackend creates an OpenAI backend.
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAIBackend{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://api.openai.com",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := []map[string]string{}
	if systemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": systemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": prompt})

	body, err := json.Marshal(map[string]any{
		"model":    b.Model,
		"messages": messages,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai API returned %d: %s", resp.StatusCode, msg)
	}

	var reply struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(reply.Choices) == 0 {
		return "", errors.New("openai response contained no choices")
	}
	return reply.Choices[0].Message.Content, nil
}
