// Package openai provides an OpenAI-compatible completion client.
package openai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pathwise/coachmem-go/pkg/llm"
)

// Client is an OpenAI completion client.
// It implements the llm.Provider interface. Any OpenAI-compatible endpoint
// works through the BaseURL override.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for the OpenAI client.
// APIKey: API key (required)
// Model: Model name to use
// BaseURL: API base URL, defaults to the OpenAI official address
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates a new OpenAI completion client.
//
// Args:
//   - cfg: Configuration containing APIKey, Model, and BaseURL
//
// Returns:
//   - *Client: Client instance
//   - error: Returns an error if initialization fails
func NewClient(cfg *Config) (*Client, error) {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

// GenerateWithMessages generates text using message history.
//
// Args:
//   - ctx: Context for controlling the request lifecycle; cancellation and
//     deadlines abort the in-flight HTTP request
//   - messages: Message history list, each message contains role and content
//   - opts: Optional generation parameters
//
// Returns:
//   - string: Generated text content
//   - error: Returns an error if generation fails
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:            c.model,
		Messages:         chatMessages,
		Temperature:      float32(options.Temperature),
		MaxTokens:        options.MaxTokens,
		TopP:             float32(options.TopP),
		FrequencyPenalty: float32(options.FrequencyPenalty),
		PresencePenalty:  float32(options.PresencePenalty),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion failed: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Close closes the client connection.
// The underlying SDK client does not require explicit closing; this method
// is retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
