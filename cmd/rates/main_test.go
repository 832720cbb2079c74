package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ratesBody = `{"success":true,"base":"GBP","rates":{"USD":1.27,"EUR":1.17},"timestamp":1700000000000,"lastUpdate":"2023-11-14T22:13:20.000Z","cached":true}`

func newRatesServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	refreshes := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/rates":
			_, _ = w.Write([]byte(ratesBody))
		case "/api/rates/refresh":
			refreshes.Add(1)
			_, _ = w.Write([]byte(`{"success":true,"message":"Cache cleared"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, refreshes
}

func TestRun_Convert(t *testing.T) {
	server, _ := newRatesServer(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{"-api", server.URL, "-amount", "100"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "100.00 GBP = 127.00 USD")
	assert.Contains(t, out.String(), "1 GBP equals")
	assert.Contains(t, out.String(), "1.2700")
	assert.Contains(t, out.String(), "Euro")
	assert.Contains(t, out.String(), "(cached)")
}

func TestRun_ReverseWithRefresh(t *testing.T) {
	server, refreshes := newRatesServer(t)
	var out bytes.Buffer

	err := run(context.Background(), []string{"-api", server.URL, "-amount", "117", "-currency", "eur", "-reverse", "-refresh"}, &out)
	require.NoError(t, err)

	assert.Equal(t, int32(1), refreshes.Load())
	assert.Contains(t, out.String(), "117.00 EUR = 100.00 GBP")
}

func TestRun_InvalidAmount(t *testing.T) {
	server, _ := newRatesServer(t)

	err := run(context.Background(), []string{"-api", server.URL, "-amount", "-5"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRun_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := run(context.Background(), []string{"-api", server.URL}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}
