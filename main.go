package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/api"
	"github.com/dalfonso89/gbp-rates-service/internal/cache"
	"github.com/dalfonso89/gbp-rates-service/internal/config"
	"github.com/dalfonso89/gbp-rates-service/internal/logger"
	"github.com/dalfonso89/gbp-rates-service/internal/platform"
	"github.com/dalfonso89/gbp-rates-service/internal/ratelimit"
	"github.com/dalfonso89/gbp-rates-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel)

	if cfg.Environment != "development" && cfg.Environment != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Upstream.APIKey == "" {
		logger.Warn("EXCHANGE_API_KEY is not set, upstream requests will be rejected")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ratesCache, closeCache := newCache(cfg, logger)
	defer closeCache()

	fetcher := service.NewHTTPFetcher(cfg.Upstream, logger, registry)
	ratesService := service.NewRatesService(fetcher, cache.WithMetrics(ratesCache, registry), logger)

	var rateLimiter *ratelimit.Limiter
	if cfg.RateLimitEnabled {
		rateLimiter = ratelimit.NewLimiter(ratelimit.SettingsFromConfig(cfg), logger)
		defer rateLimiter.Stop()
	}

	handlers := api.NewHandlers(api.HandlerConfig{
		Logger:             logger,
		RatesService:       ratesService,
		RateLimiter:        rateLimiter,
		Registry:           registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
			"cache_ttl":   cfg.CacheTTL.String(),
		}).Info("Server running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	shutdownCtx, stop := platform.NewShutdownContext(context.Background())
	defer stop()
	<-shutdownCtx.Done()

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Info("Server exited")
}

// newCache picks Redis when REDIS_URL is set and falls back to memory when
// Redis is unreachable at startup.
func newCache(cfg *config.Config, logger *logrus.Logger) (cache.Cache, func()) {
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		redisCache, err := cache.NewRedis(ctx, cfg.Redis, cfg.CacheTTL, logger)
		if err == nil {
			logger.Info("Using redis response cache")
			return redisCache, func() { _ = redisCache.Close() }
		}
		logger.WithError(err).Warn("Redis unavailable, using in-memory cache")
	}

	memoryCache := cache.NewMemory(cfg.CacheTTL, cfg.CacheCheckPeriod, logger)
	return memoryCache, memoryCache.Stop
}
