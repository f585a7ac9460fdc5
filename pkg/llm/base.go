// Package llm provides the completion-provider interface consumed by the
// chat orchestrator.
//
// The provider is treated as an opaque collaborator: messages in, text out,
// able to fail or time out. Cancellation is carried by the context.
package llm

import "context"

// Provider defines the interface for completion providers.
type Provider interface {
	// GenerateWithMessages generates text from a conversation history.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - messages: Conversation history (system, user, assistant messages)
	//   - opts: Optional generation parameters
	//
	// Returns the generated text and any error.
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)

	// Close closes the provider and releases resources.
	Close() error
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the message role: "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message content text.
	Content string `json:"content"`
}

// GenerateOptions contains options for text generation.
type GenerateOptions struct {
	// Temperature controls randomness (0.0-2.0). Higher = more random.
	Temperature float64

	// MaxTokens limits the maximum number of tokens in the response.
	MaxTokens int

	// TopP controls nucleus sampling (0.0-1.0). Higher = more diverse.
	TopP float64

	// FrequencyPenalty penalizes tokens by their frequency so far (-2.0-2.0).
	FrequencyPenalty float64

	// PresencePenalty penalizes tokens that already appeared (-2.0-2.0).
	PresencePenalty float64
}

// GenerateOption is a function type for configuring generation options.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the temperature for text generation.
func WithTemperature(temp float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens in the response.
func WithMaxTokens(max int) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.MaxTokens = max
	}
}

// WithTopP sets the top-p (nucleus sampling) parameter.
func WithTopP(topP float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.TopP = topP
	}
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(penalty float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.FrequencyPenalty = penalty
	}
}

// WithPresencePenalty sets the presence penalty.
func WithPresencePenalty(penalty float64) GenerateOption {
	return func(opts *GenerateOptions) {
		opts.PresencePenalty = penalty
	}
}

// ApplyGenerateOptions applies a slice of GenerateOption functions to create
// GenerateOptions.
//
// This is a helper used internally by provider implementations.
// Default values: Temperature=0.7, MaxTokens=1000, TopP=1.0.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
