// Command rates prints the current GBP rates from a running service and
// converts an amount into or out of one currency.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dalfonso89/gbp-rates-service/internal/client"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("rates", flag.ContinueOnError)
	flags.SetOutput(out)

	apiURL := flags.String("api", envOr("API_URL", client.DefaultBaseURL), "Base URL of the rates service")
	amountInput := flags.String("amount", "1", "Amount to convert")
	currency := flags.String("currency", "USD", "Currency to convert into or from")
	reverse := flags.Bool("reverse", false, "Convert from the currency into GBP")
	refresh := flags.Bool("refresh", false, "Clear the service cache before fetching")
	timeout := flags.Duration("timeout", 10*time.Second, "Request timeout")
	if err := flags.Parse(args); err != nil {
		return err
	}

	amount, err := client.ParseAmount(*amountInput)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	ratesClient := client.New(*apiURL, nil)
	if *refresh {
		if _, err := ratesClient.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
	}

	response, err := ratesClient.FetchRates(ctx)
	if err != nil {
		return err
	}
	if !response.Success {
		return fmt.Errorf("rates unavailable: %s", response.Error)
	}

	code := strings.ToUpper(*currency)
	rate := client.SelectedRate(response.Rates, code)
	converted := client.Convert(amount, rate, *reverse)

	fmt.Fprintf(out, "1 %s equals\n", response.Base)
	for _, row := range client.Rows(response) {
		fmt.Fprintf(out, "  %-4s %10.4f  %s\n", row.Currency, row.Rate, row.Name)
	}

	source := "live"
	if response.Cached {
		source = "cached"
	}
	fmt.Fprintf(out, "Last updated %s (%s)\n\n", response.LastUpdate, source)

	if *reverse {
		fmt.Fprintf(out, "%s %s = %s GBP\n", amount.StringFixed(2), code, converted)
	} else {
		fmt.Fprintf(out, "%s GBP = %s %s\n", amount.StringFixed(2), converted, code)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
