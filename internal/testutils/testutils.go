package testutils

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/config"
	"github.com/dalfonso89/gbp-rates-service/internal/logger"
	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// MockLogger creates a logger that discards output
func MockLogger() *logrus.Logger {
	return logger.Discard()
}

// MockConfig creates a configuration pointing at upstreamURL
func MockConfig(upstreamURL string) *config.Config {
	return &config.Config{
		Port:        "0",
		Environment: "test",
		LogLevel:    "error",

		Upstream: config.UpstreamConfig{
			BaseURL: upstreamURL,
			APIKey:  TestAPIKey,
			Timeout: 2 * time.Second,
		},

		CacheTTL:           120 * time.Second,
		CacheCheckPeriod:   0,
		CORSAllowedOrigins: []string{"*"},

		RateLimitEnabled:  false,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBurst:    20,
	}
}

// MockRatesResult creates a shaped result as the fetcher would produce it
func MockRatesResult() models.RatesResult {
	return models.RatesResult{
		Success: true,
		Base:    "GBP",
		Rates: map[string]float64{
			"USD": 1.27,
			"EUR": 1.17,
			"CHF": 1.13,
			"AUD": 1.95,
			"CAD": 1.76,
		},
		Timestamp:  1700000000000,
		LastUpdate: "2023-11-14T22:13:20.000Z",
	}
}
