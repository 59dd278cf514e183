package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/maltedev/storefront-feed/internal/cache"
	"github.com/maltedev/storefront-feed/internal/pricing"
)

// Config represents the process configuration, one section per concern.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Raindrop RaindropConfig
	Fetch    FetchConfig
	Pricing  pricing.Config
	Cache    cache.Config
	Logging  LoggingConfig
}

// ServerConfig represents the HTTP listener settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// AuthConfig represents the shared-secret check on both endpoints.
type AuthConfig struct {
	// AccessToken gates both endpoints. Empty disables the check.
	AccessToken string
}

// RaindropConfig represents the Raindrop.io API access.
type RaindropConfig struct {
	Token   string
	BaseURL string
	PerPage int
}

// FetchConfig represents outbound HTTP settings shared by both upstreams.
type FetchConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// LoggingConfig represents the slog level and output format (json or text).
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the process configuration from the environment, after merging
// an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	defaults := pricing.DefaultConfig()
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			AccessToken: getEnv("ACCESS_TOKEN", ""),
		},
		Raindrop: RaindropConfig{
			Token:   getEnv("RAINDROP_TOKEN", ""),
			BaseURL: getEnv("RAINDROP_API_URL", "https://api.raindrop.io/rest/v1"),
			PerPage: getEnvInt("RAINDROP_PER_PAGE", 200),
		},
		Fetch: FetchConfig{
			UserAgent: getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0"),
			Timeout:   getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		},
		Pricing: pricing.Config{
			ExchangeRate: getEnvFloat("FX_RATE_CNY", defaults.ExchangeRate),
			Multiplier:   getEnvFloat("MULTIPLIER", defaults.Multiplier),
			ShippingFee:  getEnvFloat("SHIPPING_FEE", defaults.ShippingFee),
			HandlingFee:  getEnvFloat("HANDLING_FEE", defaults.HandlingFee),
			MinPrice:     getEnvFloat("MIN_PRICE", defaults.MinPrice),
			RoundTo:      getEnvFloat("ROUND_TO", defaults.RoundTo),
			PriceCap:     getEnvFloat("PRICE_CAP", defaults.PriceCap),
		},
		Cache: cache.Config{
			Backend:       getEnv("CACHE_BACKEND", cache.BackendNone),
			Size:          getEnvInt("CACHE_SIZE", 512),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings needed to start. A missing RAINDROP_TOKEN is
// not fatal; the bookmark endpoint reports it per request.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Raindrop.BaseURL == "" {
		return fmt.Errorf("raindrop API URL is required")
	}

	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT cannot be negative")
	}

	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendMemory, cache.BackendRedis:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}

	if c.Cache.Backend == cache.BackendMemory && c.Cache.Size < 1 {
		return fmt.Errorf("CACHE_SIZE must be at least 1")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat falls back to defaultValue for anything that is not a finite number.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
