// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/storage"
)

// Duration is a time.Duration written as a Go duration string ("90s", "5m") in config files.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Config holds every runtime setting. Environment variables provide defaults;
// a JSON file passed with --config overrides any field it sets.
type Config struct {
	// HTTP
	Port        int      `json:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// Candidate store
	StoreDriver   string `json:"store_driver,omitempty"`
	MongoURI      string `json:"mongo_uri,omitempty"`
	MongoDatabase string `json:"mongo_database,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Text generation
	LLMProvider  string   `json:"llm_provider,omitempty"`
	LLMModel     string   `json:"llm_model,omitempty"` // Ollama model
	GeminiModel  string   `json:"gemini_model,omitempty"`
	OllamaURL    string   `json:"ollama_url,omitempty"`
	GeminiAPIKey string   `json:"gemini_api_key,omitempty"`
	LLMTimeout   Duration `json:"llm_timeout,omitempty"`

	// Object storage
	MinIOEndpoint  string `json:"minio_endpoint,omitempty"`
	MinIOAccessKey string `json:"minio_access_key,omitempty"`
	MinIOSecretKey string `json:"minio_secret_key,omitempty"`
	MinIOUseSSL    bool   `json:"minio_use_ssl,omitempty"`
	MinIORegion    string `json:"minio_region,omitempty"`
	MinIOPublicURL string `json:"minio_public_url,omitempty"`

	// PDF rendering
	PDFTimeout Duration `json:"pdf_timeout,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // text or json
}

// FromEnv reads the configuration from environment variables with defaults.
func FromEnv() *Config {
	return &Config{
		Port:        env.Int("PORT", 5000),
		CORSOrigins: env.List("CORS_ORIGINS", "http://localhost:5173"),

		StoreDriver:   env.Str("STORE", db.DriverMongo),
		MongoURI:      env.Str("MONGODB_URI", "mongodb://mongo:27017"),
		MongoDatabase: env.Str("MONGODB_DATABASE", db.DefaultMongoDatabase),
		DatabaseURL:   env.Str("DATABASE_URL", ""),

		LLMProvider:  env.Str("LLM_PROVIDER", string(llm.ProviderOllama)),
		LLMModel:     env.Str("OLLAMA_MODEL", "qwen2.5:latest"),
		OllamaURL:    env.Str("OLLAMA_HOST", "http://ollama:11434"),
		GeminiModel:  env.Str("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiAPIKey: env.Str("GEMINI_API_KEY", ""),
		LLMTimeout:   Duration(env.Duration("LLM_TIMEOUT", llm.DefaultTimeout)),

		MinIOEndpoint:  env.Str("MINIO_ENDPOINT", "minio:9000"),
		MinIOAccessKey: env.Str("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: env.Str("MINIO_SECRET_KEY", "minioadmin"),
		MinIOUseSSL:    envBool("MINIO_USE_SSL", false),
		MinIORegion:    env.Str("MINIO_REGION", storage.DefaultRegion),
		MinIOPublicURL: env.Str("MINIO_PUBLIC_URL", "http://localhost:9000"),

		PDFTimeout: Duration(env.Duration("PDF_TIMEOUT", 60*time.Second)),

		LogLevel:  env.Str("LOG_LEVEL", "info"),
		LogFormat: env.Str("LOG_FORMAT", "text"),
	}
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}

// Load reads the environment and applies the optional JSON file at path on top.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}
	file, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	merged := file.MergeWithDefaults(*cfg)
	return &merged, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	for _, f := range []struct{ dst, def *string }{
		{&result.StoreDriver, &defaults.StoreDriver},
		{&result.MongoURI, &defaults.MongoURI},
		{&result.MongoDatabase, &defaults.MongoDatabase},
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.LLMProvider, &defaults.LLMProvider},
		{&result.LLMModel, &defaults.LLMModel},
		{&result.OllamaURL, &defaults.OllamaURL},
		{&result.GeminiModel, &defaults.GeminiModel},
		{&result.GeminiAPIKey, &defaults.GeminiAPIKey},
		{&result.MinIOEndpoint, &defaults.MinIOEndpoint},
		{&result.MinIOAccessKey, &defaults.MinIOAccessKey},
		{&result.MinIOSecretKey, &defaults.MinIOSecretKey},
		{&result.MinIORegion, &defaults.MinIORegion},
		{&result.MinIOPublicURL, &defaults.MinIOPublicURL},
		{&result.LogLevel, &defaults.LogLevel},
		{&result.LogFormat, &defaults.LogFormat},
	} {
		if *f.dst == "" {
			*f.dst = *f.def
		}
	}

	// Bool fields: a file can only switch SSL on
	if !result.MinIOUseSSL {
		result.MinIOUseSSL = defaults.MinIOUseSSL
	}

	if result.LLMTimeout == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.PDFTimeout == 0 {
		result.PDFTimeout = defaults.PDFTimeout
	}

	return result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}

	switch c.StoreDriver {
	case db.DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config error: 'mongo_uri' is required for the mongo store")
		}
	case db.DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	case db.DriverMemory:
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.StoreDriver)
	}

	if err := c.LLMConfig().Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.MinIOEndpoint == "" {
		return fmt.Errorf("config error: 'minio_endpoint' is required")
	}
	if c.LLMTimeout < 0 || c.PDFTimeout < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// StoreConfig returns the candidate store settings
func (c *Config) StoreConfig() db.Config {
	cfg := db.Config{Driver: c.StoreDriver}
	switch c.StoreDriver {
	case db.DriverMongo:
		cfg.URL = c.MongoURI
		cfg.Database = c.MongoDatabase
	case db.DriverPostgres:
		cfg.URL = c.DatabaseURL
	}
	return cfg
}

// LLMConfig returns the text-generation client settings
func (c *Config) LLMConfig() *llm.Config {
	if llm.Provider(c.LLMProvider) == llm.ProviderGemini {
		cfg := llm.DefaultGeminiConfig(c.GeminiAPIKey)
		if c.GeminiModel != "" {
			cfg.Model = c.GeminiModel
		}
		cfg.Timeout = time.Duration(c.LLMTimeout)
		return cfg
	}
	return &llm.Config{
		Provider: llm.Provider(c.LLMProvider),
		Model:    c.LLMModel,
		BaseURL:  c.OllamaURL,
		Timeout:  time.Duration(c.LLMTimeout),
	}
}

// StorageConfig returns the object-store settings
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Endpoint:  c.MinIOEndpoint,
		AccessKey: c.MinIOAccessKey,
		SecretKey: c.MinIOSecretKey,
		UseSSL:    c.MinIOUseSSL,
		Region:    c.MinIORegion,
		PublicURL: c.MinIOPublicURL,
	}
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
