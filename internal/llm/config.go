// Package llm provides the text-generation client used by the extraction pipeline.
// Ollama is the default provider; Gemini can be selected through configuration.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOllama is a self-hosted Ollama server reached over HTTP
	ProviderOllama Provider = "ollama"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 5 * time.Minute

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	BaseURL  string // Ollama only
	APIKey   string // Gemini only
	Timeout  time.Duration
}

// DefaultConfig returns the default configuration (local Ollama)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderOllama,
		Model:    "qwen2.5:latest",
		BaseURL:  "http://ollama:11434",
		Timeout:  DefaultTimeout,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig(apiKey string) *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    "gemini-2.5-flash",
		APIKey:   apiKey,
		Timeout:  DefaultTimeout,
	}
}

// Validate checks the configuration for the selected provider.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("llm config: model is required")
	}
	switch c.Provider {
	case ProviderOllama:
		if c.BaseURL == "" {
			return fmt.Errorf("llm config: base URL is required for ollama")
		}
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("llm config: API key is required for gemini")
		}
	default:
		return fmt.Errorf("llm config: unknown provider %q", c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("llm config: timeout must be non-negative")
	}
	return nil
}

// Options are the decoding parameters sent with a generation request.
type Options struct {
	Temperature   float32
	TopP          float32
	RepeatPenalty float32
	ContextSize   int
	MaxTokens     int
}

// DeterministicOptions pins decoding for extraction: zero temperature and a short output budget.
func DeterministicOptions() Options {
	return Options{
		Temperature:   0,
		TopP:          0.1,
		RepeatPenalty: 1.1,
		ContextSize:   4096,
		MaxTokens:     500,
	}
}
