// Package llm implements the translation and sentiment collaborators on top
// of an OpenAI compatible chat completion API. Responses are requested as
// JSON and validated against a JSON Schema before use.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/orientbot/internal/domain/feedback"
	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// Config configures the chat completion client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client sends single-turn prompts and returns schema-validated JSON.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{api: openai.NewClientWithConfig(oc), model: model}, nil
}

// Model returns the model identifier in use.
func (c *Client) Model() string { return c.model }

// complete asks for a JSON answer matching s and decodes it into out.
func (c *Client) complete(ctx context.Context, system, user string, s *schema, out any) error {
	def, err := json.Marshal(s.definition)
	if err != nil {
		return fmt.Errorf("marshal schema %s: %w", s.name, err)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   s.name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("openai %s: %w", s.name, ctxErr)
		}
		return mapError(s.name, err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: openai %s: no choices", feedback.ErrInvalidResponse, s.name)
	}

	raw := json.RawMessage(resp.Choices[0].Message.Content)
	if err := s.validate(raw); err != nil {
		return fmt.Errorf("%w: openai %s: %w", feedback.ErrInvalidResponse, s.name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: openai %s: %w", feedback.ErrInvalidResponse, s.name, err)
	}
	return nil
}

// mapError attaches a feedback error kind based on the HTTP status.
func mapError(op string, err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: openai %s: %w", feedback.ErrRateLimited, op, err)
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return fmt.Errorf("%w: openai %s: %w", feedback.ErrInvalidResponse, op, err)
	default:
		return fmt.Errorf("%w: openai %s: %w", feedback.ErrUnavailable, op, err)
	}
}
