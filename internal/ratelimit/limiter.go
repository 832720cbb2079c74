package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/config"
)

const (
	idleBucketTTL   = 24 * time.Hour
	cleanupInterval = 5 * time.Minute
)

// Settings controls the per-client token buckets
type Settings struct {
	Enabled  bool
	Requests int           // tokens added per Window
	Window   time.Duration // refill period
	Burst    int           // bucket capacity
}

// SettingsFromConfig extracts limiter settings from the service configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Enabled:  cfg.RateLimitEnabled,
		Requests: cfg.RateLimitRequests,
		Window:   cfg.RateLimitWindow,
		Burst:    cfg.RateLimitBurst,
	}
}

// Limiter implements a token bucket rate limiter per client IP
type Limiter struct {
	settings Settings
	logger   *logrus.Entry
	now      func() time.Time

	clientBuckets map[string]*tokenBucket
	bucketsMutex  sync.Mutex

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewLimiter creates a limiter and starts its idle-bucket cleanup
func NewLimiter(settings Settings, logger *logrus.Logger) *Limiter {
	if settings.Burst <= 0 {
		settings.Burst = 1
	}
	if settings.Window <= 0 {
		settings.Window = time.Minute
	}

	rateLimiter := &Limiter{
		settings:      settings,
		logger:        logger.WithField("module", "ratelimit"),
		now:           time.Now,
		clientBuckets: make(map[string]*tokenBucket),
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
	}

	go rateLimiter.cleanup()

	return rateLimiter
}

// Allow takes a token from clientIP's bucket, creating a full bucket on first sight
func (rateLimiter *Limiter) Allow(clientIP string) bool {
	if !rateLimiter.settings.Enabled {
		return true
	}

	rateLimiter.bucketsMutex.Lock()
	defer rateLimiter.bucketsMutex.Unlock()

	currentTime := rateLimiter.now()
	bucket, found := rateLimiter.clientBuckets[clientIP]
	if !found {
		bucket = &tokenBucket{tokens: float64(rateLimiter.settings.Burst), lastSeen: currentTime}
		rateLimiter.clientBuckets[clientIP] = bucket
	}

	if elapsed := currentTime.Sub(bucket.lastSeen); elapsed > 0 {
		refill := elapsed.Seconds() / rateLimiter.settings.Window.Seconds() * float64(rateLimiter.settings.Requests)
		bucket.tokens = minimum(float64(rateLimiter.settings.Burst), bucket.tokens+refill)
	}
	bucket.lastSeen = currentTime

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

// Middleware rejects over-limit clients with 429
func (rateLimiter *Limiter) Middleware() gin.HandlerFunc {
	return func(context *gin.Context) {
		clientIP := context.ClientIP()

		if !rateLimiter.Allow(clientIP) {
			rateLimiter.logger.Warnf("Rate limit exceeded for IP: %s", clientIP)
			context.Header("X-RateLimit-Limit", strconv.Itoa(rateLimiter.settings.Requests))
			context.Header("X-RateLimit-Remaining", "0")
			context.Header("X-RateLimit-Reset", strconv.FormatInt(rateLimiter.now().Add(rateLimiter.settings.Window).Unix(), 10))
			context.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		context.Next()
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rateLimiter *Limiter) Stop() {
	rateLimiter.stopOnce.Do(func() {
		close(rateLimiter.stopCleanup)
	})
}

// cleanup removes buckets idle for a day to bound memory
func (rateLimiter *Limiter) cleanup() {
	for {
		select {
		case <-rateLimiter.cleanupTicker.C:
			rateLimiter.evictIdle()
		case <-rateLimiter.stopCleanup:
			rateLimiter.cleanupTicker.Stop()
			return
		}
	}
}

func (rateLimiter *Limiter) evictIdle() int {
	rateLimiter.bucketsMutex.Lock()
	defer rateLimiter.bucketsMutex.Unlock()

	currentTime := rateLimiter.now()
	evicted := 0
	for clientIP, bucket := range rateLimiter.clientBuckets {
		if currentTime.Sub(bucket.lastSeen) > idleBucketTTL {
			delete(rateLimiter.clientBuckets, clientIP)
			evicted++
		}
	}
	return evicted
}

func minimum(firstValue, secondValue float64) float64 {
	if firstValue < secondValue {
		return firstValue
	}
	return secondValue
}
