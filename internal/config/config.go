package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the environment name that makes a missing API key fatal
const EnvProduction = "production"

// ErrMissingAPIKey is returned by Load when no API key is configured in production
var ErrMissingAPIKey = errors.New("EXCHANGE_API_KEY is required in production")

// UpstreamConfig describes the exchange rate API the service proxies
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// RedisConfig enables the shared cache backend when URL is set
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// Config holds all configuration for the application
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	Upstream UpstreamConfig

	// Cache
	CacheTTL         time.Duration
	CacheCheckPeriod time.Duration
	Redis            RedisConfig

	CORSAllowedOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Upstream: UpstreamConfig{
			BaseURL: strings.TrimRight(getEnv("EXCHANGE_API_URL", "https://v6.exchangerate-api.com/v6"), "/"),
			APIKey:  getEnv("EXCHANGE_API_KEY", ""),
			Timeout: seconds("EXCHANGE_API_TIMEOUT_SECONDS", 5),
		},

		CacheTTL:         seconds("CACHE_TTL", 120),
		CacheCheckPeriod: seconds("CACHE_CHECK_PERIOD", 60),
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       atoiOr(getEnv("REDIS_DB", "0"), 0),
		},

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: atoiOr(getEnv("RATE_LIMIT_REQUESTS", "100"), 100),
		RateLimitWindow:   seconds("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitBurst:    atoiOr(getEnv("RATE_LIMIT_BURST", "20"), 20),
	}

	if cfg.Upstream.APIKey == "" && cfg.IsProduction() {
		return nil, ErrMissingAPIKey
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with the production designation
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func seconds(key string, fallback int) time.Duration {
	n := atoiOr(getEnv(key, ""), fallback)
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}

func atoiOr(s string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return i
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
