package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesResult_WithCached(t *testing.T) {
	original := RatesResult{
		Success: true,
		Base:    "GBP",
		Rates:   map[string]float64{"USD": 1.27},
		Cached:  false,
	}

	flagged := original.WithCached(true)

	assert.True(t, flagged.Cached)
	assert.False(t, original.Cached, "WithCached must not touch the receiver")
	assert.Equal(t, original.Rates, flagged.Rates)
}

func TestRatesResult_JSONFieldNames(t *testing.T) {
	body, err := json.Marshal(RatesResult{
		Success:    true,
		Base:       "GBP",
		Rates:      map[string]float64{"EUR": 1.17},
		Timestamp:  1700000000000,
		LastUpdate: "2023-11-14T22:13:20.000Z",
	})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	for _, key := range []string{"success", "base", "rates", "timestamp", "lastUpdate", "cached"} {
		assert.Contains(t, decoded, key)
	}
}

func TestRatesResponse_FlattensResultAndOmitsEmptyError(t *testing.T) {
	body, err := json.Marshal(RatesResponse{RatesResult: RatesResult{Success: true, Base: "GBP"}})
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"error"`)
	assert.Contains(t, string(body), `"base":"GBP"`)

	var decoded RatesResponse
	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"error":"boom"}`), &decoded))
	assert.False(t, decoded.Success)
	assert.Equal(t, "boom", decoded.Error)
}

func TestUpstreamPayload_Decode(t *testing.T) {
	raw := `{"result":"success","base_code":"GBP","conversion_rates":{"USD":1.27,"JPY":190},"time_last_update_unix":1700000000}`

	var payload UpstreamPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.Equal(t, "success", payload.Result)
	assert.Equal(t, "GBP", payload.BaseCode)
	assert.Equal(t, 190.0, payload.ConversionRates["JPY"])
	assert.Equal(t, int64(1700000000), payload.TimeLastUpdateUnix)
}

func TestCacheEntry_Expired(t *testing.T) {
	now := time.Now()
	entry := CacheEntry{ExpiresAt: now.Add(time.Second)}

	assert.False(t, entry.Expired(now))
	assert.True(t, entry.Expired(now.Add(time.Second)))
	assert.True(t, entry.Expired(now.Add(time.Minute)))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.UnixMilli(1700000000123).In(time.FixedZone("X", 3600))
	assert.Equal(t, "2023-11-14T22:13:20.123Z", FormatTimestamp(ts))
}
