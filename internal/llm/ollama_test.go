package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOllama(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	return NewOllamaClient(cfg)
}

func TestOllamaGenerate_SendsDeterministicRequest(t *testing.T) {
	var captured map[string]any
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": `{"Nom": "Benali"}`, "done": true})
	})

	out, err := client.Generate(context.Background(), "prompt text", DeterministicOptions())
	require.NoError(t, err)
	assert.Equal(t, `{"Nom": "Benali"}`, out)

	assert.Equal(t, "qwen2.5:latest", captured["model"])
	assert.Equal(t, "prompt text", captured["prompt"])
	assert.Equal(t, false, captured["stream"])

	options, ok := captured["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.0, options["temperature"])
	assert.InDelta(t, 0.1, options["top_p"], 1e-6)
	assert.InDelta(t, 1.1, options["repeat_penalty"], 1e-6)
	assert.Equal(t, 4096.0, options["num_ctx"])
	assert.Equal(t, 500.0, options["num_predict"])
}

func TestOllamaGenerate_ErrorStatus(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "model 'qwen2.5:latest' not found"})
	})

	_, err := client.Generate(context.Background(), "p", DeterministicOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "not found")
}

func TestOllamaGenerate_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	client := NewOllamaClient(cfg)

	_, err := client.Generate(context.Background(), "p", DeterministicOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach ollama")
}

func TestOllamaHealth(t *testing.T) {
	client := newTestOllama(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": [{"name": "qwen2.5:latest"}, {"name": "llama3"}]}`))
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Running)
	assert.Equal(t, 2, health.ModelCount)
}

func TestOllamaHealth_Down(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	client := NewOllamaClient(cfg)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, health.Running)
	assert.NotEmpty(t, health.Error)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, DefaultGeminiConfig("key").Validate())

	assert.Error(t, DefaultGeminiConfig("").Validate())

	cfg := DefaultConfig()
	cfg.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Provider = "openai"
	assert.Error(t, cfg.Validate())
}

func TestNewClient_DefaultsToOllama(t *testing.T) {
	client, err := NewClient(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, ok := client.(*OllamaClient)
	assert.True(t, ok)
	assert.Equal(t, "qwen2.5:latest", client.Model())
}
