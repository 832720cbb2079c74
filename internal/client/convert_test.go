package client

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		rate    float64
		reverse bool
		want    string
	}{
		{"gbp to usd", "100", 1.27, false, "127.00"},
		{"usd to gbp", "100", 1.27, true, "78.74"},
		{"fractional amount", "2.5", 1.1734, false, "2.93"},
		{"zero amount", "0", 1.27, false, "0.00"},
		{"zero rate", "100", 0, false, "0.00"},
		{"zero rate reverse", "100", 0, true, "0.00"},
		{"negative rate", "100", -1.5, false, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(decimal.RequireFromString(tt.amount), tt.rate, tt.reverse))
		})
	}
}

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"":       "0",
		".":      "0",
		"100":    "100",
		"12.50":  "12.5",
		".5":     "0.5",
		"7.":     "7",
		"000042": "42",
	}
	for input, want := range valid {
		amount, err := ParseAmount(input)
		require.NoError(t, err, input)
		assert.True(t, decimal.RequireFromString(want).Equal(amount), "%q parsed as %s", input, amount)
	}

	for _, input := range []string{"abc", "-1", "1.2.3", "1e5", " 10", "1,000"} {
		_, err := ParseAmount(input)
		assert.ErrorIs(t, err, ErrInvalidAmount, input)
	}
}

func TestCurrencyName(t *testing.T) {
	assert.Equal(t, "US Dollar", CurrencyName("USD"))
	assert.Equal(t, "Swiss Franc", CurrencyName("CHF"))
	assert.Equal(t, "JPY", CurrencyName("JPY"))
}

func TestSelectedRate(t *testing.T) {
	rates := map[string]float64{"USD": 1.27, "EUR": 0}

	assert.Equal(t, 1.27, SelectedRate(rates, "USD"))
	assert.Equal(t, 1.0, SelectedRate(rates, "EUR"))
	assert.Equal(t, 1.0, SelectedRate(rates, "CAD"))
	assert.Equal(t, 1.0, SelectedRate(nil, "USD"))
}

func TestRows(t *testing.T) {
	var response models.RatesResponse
	response.Rates = map[string]float64{"USD": 1.27, "CAD": 1.76, "EUR": 1.17}

	rows := Rows(response)

	require.Len(t, rows, 3)
	assert.Equal(t, ExchangeRate{Currency: "CAD", Rate: 1.76, Name: "Canadian Dollar"}, rows[0])
	assert.Equal(t, "EUR", rows[1].Currency)
	assert.Equal(t, "US Dollar", rows[2].Name)
}
