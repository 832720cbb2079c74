package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

// Memory is an in-process Cache with lazy expiry and a periodic sweep.
// Create it at startup and call Stop at shutdown to end the sweeper.
type Memory struct {
	ttl    time.Duration
	logger *logrus.Entry
	now    func() time.Time

	entriesMutex sync.RWMutex
	entries      map[string]models.CacheEntry

	sweepTicker *time.Ticker
	stopSweep   chan struct{}
	stopOnce    sync.Once
}

// NewMemory creates a memory cache. A non-positive checkPeriod disables the sweeper.
func NewMemory(ttl, checkPeriod time.Duration, logger *logrus.Logger) *Memory {
	return newMemory(ttl, checkPeriod, logger, time.Now)
}

func newMemory(ttl, checkPeriod time.Duration, logger *logrus.Logger, now func() time.Time) *Memory {
	memoryCache := &Memory{
		ttl:       ttl,
		logger:    logger.WithField("module", "cache"),
		now:       now,
		entries:   make(map[string]models.CacheEntry),
		stopSweep: make(chan struct{}),
	}

	if checkPeriod > 0 {
		memoryCache.sweepTicker = time.NewTicker(checkPeriod)
		go memoryCache.sweep()
	}

	return memoryCache
}

// Get returns the value stored under key if it has not expired
func (memoryCache *Memory) Get(_ context.Context, key string) (models.RatesResult, bool) {
	memoryCache.entriesMutex.RLock()
	entry, found := memoryCache.entries[key]
	memoryCache.entriesMutex.RUnlock()

	if !found || entry.Expired(memoryCache.now()) {
		return models.RatesResult{}, false
	}
	return entry.Data, true
}

// Set stores value under key until the TTL elapses
func (memoryCache *Memory) Set(_ context.Context, key string, value models.RatesResult) {
	memoryCache.entriesMutex.Lock()
	memoryCache.entries[key] = models.CacheEntry{
		Data:      value,
		ExpiresAt: memoryCache.now().Add(memoryCache.ttl),
	}
	memoryCache.entriesMutex.Unlock()
}

// Delete removes key
func (memoryCache *Memory) Delete(_ context.Context, key string) {
	memoryCache.entriesMutex.Lock()
	delete(memoryCache.entries, key)
	memoryCache.entriesMutex.Unlock()
}

// Flush removes every entry
func (memoryCache *Memory) Flush(_ context.Context) {
	memoryCache.entriesMutex.Lock()
	memoryCache.entries = make(map[string]models.CacheEntry)
	memoryCache.entriesMutex.Unlock()
}

// Len reports the number of stored entries, expired ones included until swept
func (memoryCache *Memory) Len() int {
	memoryCache.entriesMutex.RLock()
	defer memoryCache.entriesMutex.RUnlock()
	return len(memoryCache.entries)
}

// Stop ends the sweeper. Safe to call more than once.
func (memoryCache *Memory) Stop() {
	memoryCache.stopOnce.Do(func() {
		close(memoryCache.stopSweep)
	})
}

func (memoryCache *Memory) sweep() {
	for {
		select {
		case <-memoryCache.sweepTicker.C:
			if evicted := memoryCache.evictExpired(); evicted > 0 {
				memoryCache.logger.Debugf("Evicted %d expired cache entries", evicted)
			}
		case <-memoryCache.stopSweep:
			memoryCache.sweepTicker.Stop()
			return
		}
	}
}

func (memoryCache *Memory) evictExpired() int {
	memoryCache.entriesMutex.Lock()
	defer memoryCache.entriesMutex.Unlock()

	currentTime := memoryCache.now()
	evicted := 0
	for key, entry := range memoryCache.entries {
		if entry.Expired(currentTime) {
			delete(memoryCache.entries, key)
			evicted++
		}
	}
	return evicted
}
