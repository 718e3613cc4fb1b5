package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Storefront backend
	Backend BackendConfig

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Category search
	SearchDebounce time.Duration

	// Sessions
	SessionTTL time.Duration

	// Rate limiting, per session
	RateLimitPerMinute int
	RateLimitBurst     int
}

// BackendConfig holds the storefront REST backend endpoints
type BackendConfig struct {
	BaseURL      string        // Category endpoints, e.g. http://localhost:3000/api
	LoginBaseURL string        // Public login endpoint host
	ImageURL     string        // Host prepended to relative image paths
	Timeout      time.Duration // Per-request timeout
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Backend: BackendConfig{
			BaseURL:      strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:3000/api"), "/"),
			LoginBaseURL: strings.TrimSuffix(getEnv("LOGIN_BASE_URL", "http://localhost:3000"), "/"),
			ImageURL:     strings.TrimSuffix(getEnv("IMAGE_URL", "http://localhost:3000"), "/"),
		},
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
		Env:         getEnv("ENV", "development"),
	}

	var err error
	if cfg.Backend.Timeout, err = getEnvDuration("BACKEND_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getEnvDuration("SEARCH_DEBOUNCE", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getEnvInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the console runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	for key, raw := range map[string]string{
		"BASE_URL":       c.Backend.BaseURL,
		"LOGIN_BASE_URL": c.Backend.LoginBaseURL,
		"IMAGE_URL":      c.Backend.ImageURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must be positive")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return n, nil
}
