package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/config"
	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

const (
	// BaseCurrency is the currency every rate is quoted against
	BaseCurrency = "GBP"

	ratePrecision    = 4
	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 1 << 20
)

var supportedCurrencies = []string{"USD", "EUR", "CHF", "AUD", "CAD"}

// SupportedCurrencies returns the currencies served, in display order
func SupportedCurrencies() []string {
	return append([]string(nil), supportedCurrencies...)
}

// Fetcher produces a freshly shaped rates result
type Fetcher interface {
	Fetch(ctx context.Context) (models.RatesResult, error)
}

// HTTPFetcher reads rates from an exchangerate-api v6 compatible endpoint
type HTTPFetcher struct {
	configuration config.UpstreamConfig
	logger        *logrus.Entry
	httpClient    *http.Client
	now           func() time.Time
	metrics       *fetchMetrics
}

// NewHTTPFetcher creates a fetcher. A nil registerer leaves its metrics unregistered.
func NewHTTPFetcher(configuration config.UpstreamConfig, logger *logrus.Logger, registerer prometheus.Registerer) *HTTPFetcher {
	timeout := configuration.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpTransport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &HTTPFetcher{
		configuration: configuration,
		logger:        logger.WithField("module", "fetcher"),
		httpClient:    &http.Client{Timeout: timeout, Transport: httpTransport},
		now:           time.Now,
		metrics:       newFetchMetrics(registerer),
	}
}

// Fetch calls upstream once and shapes the response. No retries.
func (fetcher *HTTPFetcher) Fetch(ctx context.Context) (result models.RatesResult, err error) {
	started := time.Now()
	defer func() {
		fetcher.metrics.observe(started, err)
	}()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fetcher.buildURL(), nil)
	if err != nil {
		return models.RatesResult{}, &FetchError{
			Kind:    KindUpstream,
			Message: "Exchange rate API error: invalid request",
			Cause:   fmt.Errorf("http.NewRequestWithContext: %w", err),
		}
	}
	request.Header.Set("Accept", "application/json")

	response, err := fetcher.httpClient.Do(request)
	if err != nil {
		return models.RatesResult{}, transientError(err, fetcher.httpClient.Timeout)
	}
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil {
			fetcher.logger.Warnf("response.Body.Close: %v", closeErr)
		}
	}()

	if statusErr := statusError(response.StatusCode); statusErr != nil {
		return models.RatesResult{}, statusErr
	}

	var payload models.UpstreamPayload
	if err := json.NewDecoder(io.LimitReader(response.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return models.RatesResult{}, &FetchError{
			Kind:    KindUpstream,
			Message: "Exchange rate API error: invalid response body",
			Status:  response.StatusCode,
			Cause:   fmt.Errorf("json.Decode: %w", err),
		}
	}

	if payload.Result != "success" {
		return models.RatesResult{}, payloadError(payload)
	}

	currentTime := fetcher.now()
	return models.RatesResult{
		Success:    true,
		Base:       BaseCurrency,
		Rates:      filterRates(payload.ConversionRates),
		Timestamp:  currentTime.UnixMilli(),
		LastUpdate: models.FormatTimestamp(currentTime),
		Cached:     false,
	}, nil
}

func (fetcher *HTTPFetcher) buildURL() string {
	return fmt.Sprintf("%s/%s/latest/%s",
		fetcher.configuration.BaseURL,
		url.PathEscape(fetcher.configuration.APIKey),
		BaseCurrency)
}

// filterRates keeps the supported currencies present upstream, rounded to 4 places.
// Missing, non-positive and non-finite rates are skipped.
func filterRates(all map[string]float64) map[string]float64 {
	filtered := make(map[string]float64, len(supportedCurrencies))
	for _, currency := range supportedCurrencies {
		rate, found := all[currency]
		// A zero rate is dropped like a missing one.
		if !found || rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}
		filtered[currency] = roundRate(rate)
	}
	return filtered
}

func roundRate(rate float64) float64 {
	rounded, _ := decimal.NewFromFloat(rate).Round(ratePrecision).Float64()
	return rounded
}

func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &FetchError{Kind: KindAuth, Status: status, Message: "Invalid API key. Please check your configuration."}
	case status == http.StatusTooManyRequests:
		return &FetchError{Kind: KindRateLimit, Status: status, Message: "Rate limit exceeded. Please try again later."}
	case status < 200 || status > 299:
		return &FetchError{Kind: KindUpstream, Status: status, Message: fmt.Sprintf("Exchange rate API error: status %d", status)}
	}
	return nil
}

// payloadError maps an unsuccessful 2xx body. exchangerate-api reports key and
// quota problems this way as well as through status codes.
func payloadError(payload models.UpstreamPayload) error {
	switch payload.ErrorType {
	case "invalid-key", "inactive-account":
		return &FetchError{Kind: KindAuth, Message: "Invalid API key. Please check your configuration."}
	case "quota-reached":
		return &FetchError{Kind: KindRateLimit, Message: "Rate limit exceeded. Please try again later."}
	case "":
		return &FetchError{Kind: KindUpstream, Message: "API returned unsuccessful response"}
	default:
		return &FetchError{Kind: KindUpstream, Message: "API returned unsuccessful response: " + payload.ErrorType}
	}
}

// transientError builds a message without the request URL, which carries the API key.
func transientError(err error, timeout time.Duration) error {
	message := "Exchange rate API error: request failed"

	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		message = fmt.Sprintf("Exchange rate API error: timeout of %s exceeded", timeout)
	case errors.Is(err, context.Canceled):
		message = "Exchange rate API error: request cancelled"
	case errors.As(err, &urlErr):
		message = "Exchange rate API error: " + urlErr.Err.Error()
	}

	return &FetchError{Kind: KindTransient, Message: message, Cause: err}
}
