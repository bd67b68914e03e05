package llm

import (
	"context"
)

// Client is an abstraction over text-generation providers
type Client interface {
	// Generate sends a prompt and returns the raw completion text
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	// Health reports whether the provider is reachable and how many models it serves
	Health(ctx context.Context) (*Health, error)
	// Model returns the configured model name
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// Health is the result of a provider reachability check.
type Health struct {
	Running    bool   `json:"ollamaRunning"`
	ModelCount int    `json:"modelCount"`
	Error      string `json:"error,omitempty"`
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	default:
		return NewOllamaClient(config), nil
	}
}
