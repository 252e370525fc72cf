// Package ai wraps the external chat-completion API behind a small gateway
// interface. The gateway is a pure request/response bridge: one system
// instruction, one payload, one assistant reply. No retries, no backoff;
// callers decide what a failed generation means.
package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrConnection marks transport-level failures reaching the API.
	ErrConnection = errors.New("ai: connection failure")
	// ErrUpstream marks errors reported by the API itself.
	ErrUpstream = errors.New("ai: upstream failure")
)

// Gateway is the boundary consumed by the extraction and timesheet services.
// Tests substitute a mock.
type Gateway interface {
	Run(ctx context.Context, instruction, payload string) (string, error)
}

// Client is the production Gateway over the OpenAI chat-completion API.
type Client struct {
	api   *openai.Client
	model string
}

// DefaultModel is used when the configuration names none.
const DefaultModel = "gpt-4o-mini"

// NewClient constructs the gateway. A missing API key is a configuration
// error at construction time, not at first call.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ai: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: openai.NewClient(apiKey), model: model}, nil
}

// Run sends the instruction as the system message and the payload as the
// user message, returning the assistant's text content.
func (c *Client) Run(ctx context.Context, instruction, payload string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return "", fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
