package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled, err := strconv.ParseBool(env.Str("RATE_LIMIT_ENABLED", "true"))
	if err != nil {
		enabled = true
	}
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    env.Int("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   env.Duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.Duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       toSet(env.List("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       toSet(env.List("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(env.Int("RATE_LIMIT_EXTRACT_PER_HOUR", 30)),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
// extractPerHour bounds the model-backed extraction endpoint.
func DefaultEndpointConfigs(extractPerHour int) []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: model inference and PDF rendering
		{Path: "/api/cv/extract", Method: http.MethodPost, Limit: extractPerHour, Window: time.Hour, Burst: 3},
		{Path: "/api/cv/qualified/", Method: http.MethodPatch, Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/api/cv/eval/correct/", Method: http.MethodPatch, Limit: 30, Window: time.Minute, Burst: 5},

		// Tier 2: token-addressed candidate forms
		{Path: "/api/cv/token/", Method: http.MethodGet, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/cv/token/", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/api/cv/eval/token/", Method: http.MethodGet, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/cv/eval/submit/", Method: http.MethodPatch, Limit: 10, Window: time.Minute, Burst: 3},

		// Tier 3: everything else uses the default limit
		// Tier 4: /health is unlimited (special case in matcher)
	}
}

// toSet turns a list of client addresses into a lookup set.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
