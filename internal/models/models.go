package models

import "time"

// LastUpdateLayout is the ISO-8601 layout used for lastUpdate and health timestamps
const LastUpdateLayout = "2006-01-02T15:04:05.000Z07:00"

// RatesResult is the shaped rates payload served by GET /api/rates.
// The Rates map is never written after construction; share it freely.
type RatesResult struct {
	Success    bool               `json:"success"`
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
	Timestamp  int64              `json:"timestamp"`
	LastUpdate string             `json:"lastUpdate"`
	Cached     bool               `json:"cached"`
}

// WithCached returns a copy of r with the cached flag set
func (r RatesResult) WithCached(cached bool) RatesResult {
	r.Cached = cached
	return r
}

// RatesResponse is RatesResult as seen by API consumers
type RatesResponse struct {
	RatesResult
	Error string `json:"error,omitempty"`
}

// UpstreamPayload is the exchangerate-api v6 "latest" response
type UpstreamPayload struct {
	Result             string             `json:"result"`
	ErrorType          string             `json:"error-type,omitempty"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
}

// ErrorResponse is returned when fetching rates fails
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RefreshResponse is returned by POST /api/rates/refresh
type RefreshResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NotFoundResponse is returned for unmatched routes
type NotFoundResponse struct {
	Error string `json:"error"`
}

// CacheEntry holds a cached result and when it stops being served
type CacheEntry struct {
	Data      RatesResult
	ExpiresAt time.Time
}

// Expired reports whether the entry is stale at now
func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// FormatTimestamp renders t as ISO-8601 UTC with millisecond precision
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(LastUpdateLayout)
}
