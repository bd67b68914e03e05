package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaClient implements Client against the Ollama HTTP API
type OllamaClient struct {
	httpClient *http.Client
	config     *Config
}

type ollamaOptions struct {
	Temperature   float32 `json:"temperature"`
	TopP          float32 `json:"top_p,omitempty"`
	RepeatPenalty float32 `json:"repeat_penalty,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaClient creates a client for the Ollama server at config.BaseURL
func NewOllamaClient(config *Config) *OllamaClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &OllamaClient{
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
	}
}

// Generate calls /api/generate with streaming disabled and returns the full completion
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature:   opts.Temperature,
			TopP:          opts.TopP,
			RepeatPenalty: opts.RepeatPenalty,
			NumCtx:        opts.ContextSize,
			NumPredict:    opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/generate"), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ollama response: %w", err)
	}

	var result ollamaGenerateResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(data, &result) == nil && result.Error != "" {
			return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, result.Error)
		}
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode ollama response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	return result.Response, nil
}

// Health lists the installed models via /api/tags
func (c *OllamaClient) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/tags"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Health{Running: false, Error: err.Error()}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &Health{Running: false, Error: fmt.Sprintf("status %d", resp.StatusCode)}, nil
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return &Health{Running: true, Error: err.Error()}, nil
	}

	return &Health{Running: true, ModelCount: len(tags.Models)}, nil
}

// Model returns the configured model name
func (c *OllamaClient) Model() string {
	return c.config.Model
}

// Close is a no-op; the HTTP client holds no dedicated resources
func (c *OllamaClient) Close() error {
	return nil
}

func (c *OllamaClient) endpoint(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}
