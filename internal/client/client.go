// Package client calls the rates service over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// DefaultBaseURL is used when no API URL is configured
const DefaultBaseURL = "http://localhost:3001"

// Client fetches rates from a running service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. A nil httpClient gets a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchRates reads GET /api/rates bypassing intermediary caches. Any non-2xx
// status becomes one generic error; the error body is not inspected.
func (c *Client) FetchRates(ctx context.Context) (models.RatesResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/rates", nil)
	if err != nil {
		return models.RatesResponse{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	request.Header.Set("Cache-Control", "no-store")
	request.Header.Set("Accept", "application/json")

	var rates models.RatesResponse
	if err := c.do(request, &rates); err != nil {
		return models.RatesResponse{}, err
	}
	return rates, nil
}

// Refresh asks the service to drop its cached rates
func (c *Client) Refresh(ctx context.Context) (models.RefreshResponse, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rates/refresh", nil)
	if err != nil {
		return models.RefreshResponse{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	var refreshed models.RefreshResponse
	if err := c.do(request, &refreshed); err != nil {
		return models.RefreshResponse{}, err
	}
	return refreshed, nil
}

func (c *Client) do(request *http.Request, dest interface{}) error {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("httpClient.Do: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("HTTP error! status: %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(dest); err != nil {
		return fmt.Errorf("json.NewDecoder.Decode: %w", err)
	}
	return nil
}
