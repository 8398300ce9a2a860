package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no API key is set for the provider.
var ErrNotConfigured = errors.New("AI provider is not configured")

// Message roles in a chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat history.
type Message struct {
	Role    string
	Content string
}

// ProviderError wraps a failed provider call.
type ProviderError struct {
	Provider Provider
	Model    string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request to %s failed: %v", e.Provider, e.Model, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates a JSON document under a system instruction
	GenerateJSON(ctx context.Context, system, prompt string, tier ModelTier) (string, error)
	// Chat continues a conversation and returns the assistant reply
	Chat(ctx context.Context, system string, history []Message, message string, tier ModelTier) (string, error)
	// GetModel returns the model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}
