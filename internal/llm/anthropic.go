package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"seoforge/internal/httpx"
)

// DefaultAnthropicModel is the messages-endpoint model used for all purposes.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// AnthropicClient calls the Anthropic messages endpoint over the shared
// JSON fetcher.
type AnthropicClient struct {
	http   *httpx.Client
	apiKey string
	model  string
}

// NewAnthropic creates an Anthropic caller for the given key.
func NewAnthropic(apiKey, model string, client *httpx.Client) *AnthropicClient {
	if model == "" {
		model = DefaultAnthropicModel
	}
	if client == nil {
		client = httpx.New()
	}
	return &AnthropicClient{http: client, apiKey: apiKey, model: model}
}

// Name returns the provider tag.
func (c *AnthropicClient) Name() string { return "anthropic" }

// Complete performs one messages call.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	opts = opts.withDefaults()

	body := map[string]any{
		"model":       c.model,
		"max_tokens":  opts.MaxTokens,
		"temperature": opts.Temperature,
		"system":      system,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}

	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}
	if err := c.http.JSONRequest(ctx, http.MethodPost, anthropicEndpoint, headers, body, opts.Timeout, &resp); err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Content[0].Text)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
