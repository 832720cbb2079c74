// Package cache stores shaped rate results for a bounded time.
package cache

import (
	"context"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// RatesKey is the single key the service caches under
const RatesKey = "exchange-rates"

// Cache is a TTL-bound store of rate results. Implementations must be safe for
// concurrent use. Stored values are shared, not copied; callers treat them as immutable.
type Cache interface {
	// Get returns the live value for key; expired entries are reported absent.
	Get(ctx context.Context, key string) (models.RatesResult, bool)
	// Set stores value under key with the cache's TTL.
	Set(ctx context.Context, key string, value models.RatesResult)
	// Delete removes key.
	Delete(ctx context.Context, key string)
	// Flush removes every entry.
	Flush(ctx context.Context)
}
