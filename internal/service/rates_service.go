package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/dalfonso89/gbp-rates-service/internal/cache"
	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// RatesService serves rates from the cache and falls back to the fetcher on a miss
type RatesService struct {
	fetcher    Fetcher
	ratesCache cache.Cache
	logger     *logrus.Entry

	singleFlightGroup singleflight.Group
}

// NewRatesService wires a fetcher to a cache
func NewRatesService(fetcher Fetcher, ratesCache cache.Cache, logger *logrus.Logger) *RatesService {
	return &RatesService{
		fetcher:    fetcher,
		ratesCache: ratesCache,
		logger:     logger.WithField("module", "rates"),
	}
}

// GetRates returns the cached result flagged cached:true, or fetches, stores and
// returns a fresh one flagged cached:false. Failed fetches are never cached.
func (ratesService *RatesService) GetRates(requestContext context.Context) (models.RatesResult, error) {
	if cachedResult, found := ratesService.ratesCache.Get(requestContext, cache.RatesKey); found {
		return cachedResult.WithCached(true), nil
	}

	// Concurrent misses share one upstream call. The call is detached from the
	// first caller's cancellation so its peers are not failed by a disconnect.
	result, err, shared := ratesService.singleFlightGroup.Do(cache.RatesKey, func() (interface{}, error) {
		fetchContext := context.WithoutCancel(requestContext)

		fetched, err := ratesService.fetcher.Fetch(fetchContext)
		if err != nil {
			return nil, err
		}

		ratesService.ratesCache.Set(fetchContext, cache.RatesKey, fetched)
		ratesService.logger.Infof("Fetched %d rates for %s", len(fetched.Rates), fetched.Base)
		return fetched, nil
	})
	if err != nil {
		ratesService.logger.Errorf("Error fetching exchange rates: %v", err)
		return models.RatesResult{}, err
	}
	if shared {
		ratesService.logger.Debug("Shared in-flight upstream fetch")
	}

	return result.(models.RatesResult).WithCached(false), nil
}

// Refresh drops the cached rates; the next GetRates fetches again
func (ratesService *RatesService) Refresh(requestContext context.Context) {
	ratesService.ratesCache.Delete(requestContext, cache.RatesKey)
	ratesService.logger.Info("Rates cache cleared")
}

// ClearAll empties the whole cache
func (ratesService *RatesService) ClearAll(requestContext context.Context) {
	ratesService.ratesCache.Flush(requestContext)
	ratesService.logger.Info("Cache flushed")
}
