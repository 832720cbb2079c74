package client

import (
	"errors"
	"regexp"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// ErrInvalidAmount is returned for amounts that are not plain non-negative decimals
var ErrInvalidAmount = errors.New("amount must be a non-negative decimal number")

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

var currencyNames = map[string]string{
	"USD": "US Dollar",
	"EUR": "Euro",
	"CHF": "Swiss Franc",
	"AUD": "Australian Dollar",
	"CAD": "Canadian Dollar",
}

// ExchangeRate is one displayable row of a rates response
type ExchangeRate struct {
	Currency string
	Rate     float64
	Name     string
}

// CurrencyName returns the display name for code, or code itself when unknown
func CurrencyName(code string) string {
	if name, ok := currencyNames[code]; ok {
		return name
	}
	return code
}

// ParseAmount accepts digits with at most one decimal point. Empty input is zero.
func ParseAmount(input string) (decimal.Decimal, error) {
	if !amountPattern.MatchString(input) {
		return decimal.Zero, ErrInvalidAmount
	}
	if input == "" || input == "." {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(input)
}

// Convert turns amount GBP into the target currency, or target back into GBP
// when reverse is set. The result has two decimals; a non-positive rate yields 0.00.
func Convert(amount decimal.Decimal, rate float64, reverse bool) string {
	if rate <= 0 {
		return decimal.Zero.StringFixed(2)
	}

	rateValue := decimal.NewFromFloat(rate)
	if reverse {
		return amount.Div(rateValue).StringFixed(2)
	}
	return amount.Mul(rateValue).StringFixed(2)
}

// SelectedRate returns the rate for currency, or 1 when it is not present
func SelectedRate(rates map[string]float64, currency string) float64 {
	if rate, ok := rates[currency]; ok && rate > 0 {
		return rate
	}
	return 1
}

// Rows lists the rates in response with display names, ordered by currency code
func Rows(response models.RatesResponse) []ExchangeRate {
	rows := make([]ExchangeRate, 0, len(response.Rates))
	for currency, rate := range response.Rates {
		rows = append(rows, ExchangeRate{Currency: currency, Rate: rate, Name: CurrencyName(currency)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Currency < rows[j].Currency })
	return rows
}
