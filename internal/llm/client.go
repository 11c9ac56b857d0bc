package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Turn is a single conversational message sent to the model.
type Turn struct {
	Role    string // "user" or "assistant".
	Content string // Message text.
}

// Client invokes the external text-generation endpoint. Implementations are
// synchronous and never retry; retry policy belongs to the caller.
type Client interface {
	Invoke(ctx context.Context, system string, turns []Turn, maxTokens int) (string, error)
}

// ErrNotConfigured indicates no model credential is configured. This is an
// operator problem, not a user one.
var ErrNotConfigured = errors.New("llm: api key not configured")

// UpstreamError carries a non-success response from the model endpoint.
type UpstreamError struct {
	StatusCode int    // Upstream HTTP status, 0 for transport failures.
	Body       string // Upstream error body or transport error text.
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm: upstream status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("llm: upstream request failed: %s", e.Body)
}

// Config holds the model endpoint settings.
type Config struct {
	APIKey    string // Credential for the endpoint; empty means not configured.
	BaseURL   string // Optional endpoint override.
	Model     string // Model identifier.
	MaxTokens int    // Default max-token budget.
}

// OpenAIClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient constructs a client. With an empty API key the client is
// created but every Invoke fails with ErrNotConfigured.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return &OpenAIClient{model: cfg.Model, maxTokens: cfg.MaxTokens}
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Invoke sends the composed prompt and returns the first generated text
// segment. An empty system prompt is omitted from the request; a
// non-positive maxTokens falls back to the configured default budget.
func (c *OpenAIClient) Invoke(ctx context.Context, system string, turns []Turn, maxTokens int) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNotConfigured
	}
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, turn := range turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, errCreate := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if errCreate != nil {
		var apiErr *openai.APIError
		if errors.As(errCreate, &apiErr) {
			return "", &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return "", &UpstreamError{Body: errCreate.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{StatusCode: 200, Body: "empty completion"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
