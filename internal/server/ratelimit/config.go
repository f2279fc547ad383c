package ratelimit

import (
	"time"

	"github.com/jonathan/talenttrek/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	EndpointConfigs []EndpointConfig
}

// FromConfig builds the limiter configuration from the service configuration.
// Rates are per minute; bursts are the rate times the burst factor.
func FromConfig(cfg config.RateLimitConfig) *Config {
	factor := cfg.BurstFactor
	if factor < 1 {
		factor = 1
	}
	return &Config{
		Enabled:         cfg.Enabled,
		DefaultLimit:    cfg.General,
		DefaultWindow:   time.Minute,
		DefaultBurst:    cfg.General * factor,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		EndpointConfigs: DefaultEndpointConfigs(cfg.Auth, cfg.Uploads, factor),
	}
}

// DefaultEndpointConfigs returns the endpoint tiers that are stricter than the default.
func DefaultEndpointConfigs(authLimit, uploadLimit, burstFactor int) []EndpointConfig {
	auth := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: authLimit, Window: time.Minute, Burst: authLimit}
	}
	upload := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: uploadLimit, Window: time.Minute, Burst: uploadLimit * burstFactor}
	}
	return []EndpointConfig{
		// Credential endpoints get no burst allowance.
		auth("/api/signup"),
		auth("/api/login"),

		upload("/api/upload/"),
		upload("/api/profile/picture"),
		upload("/api/profile/company-logo"),
		upload("/api/jobs/upload-logo"),
	}
}
