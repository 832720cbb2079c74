package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// TestAPIKey is the key MockUpstreamServer expects in the request path
const TestAPIKey = "test-api-key"

// MockUpstreamServer imitates the exchangerate-api v6 "latest" endpoint
type MockUpstreamServer struct {
	server *httptest.Server
	calls  atomic.Int32

	mu      sync.Mutex
	status  int
	payload interface{}
	delay   time.Duration
}

// NewMockUpstreamServer creates a server answering with DefaultUpstreamPayload
func NewMockUpstreamServer() *MockUpstreamServer {
	mock := &MockUpstreamServer{
		status:  http.StatusOK,
		payload: DefaultUpstreamPayload(),
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

// DefaultUpstreamPayload returns a GBP payload with one currency outside the allow-list
func DefaultUpstreamPayload() models.UpstreamPayload {
	return models.UpstreamPayload{
		Result:   "success",
		BaseCode: "GBP",
		ConversionRates: map[string]float64{
			"USD": 1.27,
			"EUR": 1.17,
			"CHF": 1.13,
			"AUD": 1.95,
			"CAD": 1.76,
			"JPY": 190,
		},
		TimeLastUpdateUnix: 1700000000,
	}
}

// URL is the value to configure as EXCHANGE_API_URL
func (m *MockUpstreamServer) URL() string {
	return m.server.URL + "/v6"
}

// Close shuts the server down
func (m *MockUpstreamServer) Close() {
	m.server.Close()
}

// Calls reports how many requests reached the server
func (m *MockUpstreamServer) Calls() int {
	return int(m.calls.Load())
}

// Respond sets the status and JSON body for subsequent requests
func (m *MockUpstreamServer) Respond(status int, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.payload = payload
}

// Delay makes subsequent responses wait d before answering
func (m *MockUpstreamServer) Delay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *MockUpstreamServer) handler(w http.ResponseWriter, r *http.Request) {
	m.calls.Add(1)

	m.mu.Lock()
	status, payload, delay := m.status, m.payload, m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// /v6/{key}/latest/{base}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "v6" || parts[2] != "latest" {
		http.NotFound(w, r)
		return
	}
	if parts[1] != TestAPIKey {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(models.UpstreamPayload{Result: "error", ErrorType: "invalid-key"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw, ok := payload.(string); ok {
		_, _ = w.Write([]byte(raw))
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
