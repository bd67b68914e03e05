package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	tmpFile := writeConfig(t, `{
		"port": 8080,
		"store_driver": "postgres",
		"database_url": "postgres://localhost/candidates",
		"llm_timeout": "90s",
		"pdf_timeout": 30,
		"cors_origins": ["https://rh.example.com"]
	}`)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, db.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://localhost/candidates", cfg.DatabaseURL)
	assert.Equal(t, Duration(90*time.Second), cfg.LLMTimeout)
	assert.Equal(t, Duration(30*time.Second), cfg.PDFTimeout)
	assert.Equal(t, []string{"https://rh.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `{"llm_timeout": "soon"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, db.DriverMongo, cfg.StoreDriver)
	assert.Equal(t, string(llm.ProviderOllama), cfg.LLMProvider)
	assert.Equal(t, Duration(llm.DefaultTimeout), cfg.LLMTimeout)
	assert.Equal(t, "minioadmin", cfg.MinIOAccessKey)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORE", "memory")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("LLM_TIMEOUT", "2m")

	cfg := FromEnv()
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, db.DriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, Duration(2*time.Minute), cfg.LLMTimeout)
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	path := writeConfig(t, `{"port": 9000, "log_format": "json"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "minio:9000", cfg.MinIOEndpoint, "unset fields keep env defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: "port"},
		{name: "unknown store", mutate: func(c *Config) { c.StoreDriver = "sqlite" }, wantErr: "unknown store driver"},
		{name: "postgres without url", mutate: func(c *Config) { c.StoreDriver = db.DriverPostgres; c.DatabaseURL = "" }, wantErr: "database_url"},
		{name: "gemini without key", mutate: func(c *Config) { c.LLMProvider = "gemini"; c.GeminiAPIKey = "" }, wantErr: "config error"},
		{name: "no minio endpoint", mutate: func(c *Config) { c.MinIOEndpoint = "" }, wantErr: "minio_endpoint"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "log_format"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreConfig(t *testing.T) {
	cfg := FromEnv()
	cfg.StoreDriver = db.DriverPostgres
	cfg.DatabaseURL = "postgres://x"

	sc := cfg.StoreConfig()
	assert.Equal(t, db.Config{Driver: db.DriverPostgres, URL: "postgres://x"}, sc)
}

func TestLLMConfig_Gemini(t *testing.T) {
	cfg := FromEnv()
	cfg.LLMProvider = "gemini"
	cfg.GeminiAPIKey = "key"

	lc := cfg.LLMConfig()
	assert.Equal(t, llm.ProviderGemini, lc.Provider)
	assert.Equal(t, "gemini-2.5-flash", lc.Model)
	assert.Equal(t, "key", lc.APIKey)
}
