package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/dalfonso89/gbp-rates-service/internal/middleware"
	"github.com/dalfonso89/gbp-rates-service/internal/models"
	"github.com/dalfonso89/gbp-rates-service/internal/ratelimit"
)

// RatesProvider is what the handlers need from the rates service
type RatesProvider interface {
	GetRates(ctx context.Context) (models.RatesResult, error)
	Refresh(ctx context.Context)
	ClearAll(ctx context.Context)
}

// HandlerConfig holds dependencies for the HTTP layer
type HandlerConfig struct {
	Logger             *logrus.Logger
	RatesService       RatesProvider
	RateLimiter        *ratelimit.Limiter // optional
	Registry           *prometheus.Registry
	CORSAllowedOrigins []string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	logger       *logrus.Logger
	ratesService RatesProvider
	rateLimiter  *ratelimit.Limiter
	registry     *prometheus.Registry
	corsOrigins  []string
	httpMetrics  gin.HandlerFunc
	now          func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	registry := handlerConfig.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Handlers{
		logger:       handlerConfig.Logger,
		ratesService: handlerConfig.RatesService,
		rateLimiter:  handlerConfig.RateLimiter,
		registry:     registry,
		corsOrigins:  handlerConfig.CORSAllowedOrigins,
		httpMetrics:  middleware.Metrics(registry),
		now:          time.Now,
	}
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = false

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(handlers.httpMetrics)
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(handlers.corsOrigins))

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(handlers.registry, promhttp.HandlerOpts{})))

	// Only /api is rate limited.
	apiGroup := router.Group("/api")
	if handlers.rateLimiter != nil {
		apiGroup.Use(handlers.rateLimiter.Middleware())
	}
	{
		apiGroup.GET("/rates", handlers.GetRates)
		apiGroup.POST("/rates/refresh", handlers.RefreshRates)
	}

	router.NoRoute(handlers.NotFound)

	return router
}

// HealthCheck always reports ok with the current time
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	context.JSON(http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: models.FormatTimestamp(handlers.now()),
	})
}

// GetRates serves the cached or freshly fetched GBP rates
func (handlers *Handlers) GetRates(context *gin.Context) {
	if handlers.ratesService == nil {
		handlers.writeErrorResponse(context, "Failed to fetch exchange rates")
		return
	}

	exchangeRates, fetchError := handlers.ratesService.GetRates(context.Request.Context())
	if fetchError != nil {
		handlers.logger.WithField("request_id", context.GetString("request_id")).
			Errorf("Error fetching exchange rates: %v", fetchError)
		handlers.writeErrorResponse(context, fetchError.Error())
		return
	}

	context.JSON(http.StatusOK, exchangeRates)
}

// RefreshRates drops the cached rates. With ?scope=all the whole cache is emptied.
func (handlers *Handlers) RefreshRates(context *gin.Context) {
	if handlers.ratesService != nil {
		if context.Query("scope") == "all" {
			handlers.ratesService.ClearAll(context.Request.Context())
		} else {
			handlers.ratesService.Refresh(context.Request.Context())
		}
	}

	context.JSON(http.StatusOK, models.RefreshResponse{Success: true, Message: "Cache cleared"})
}

// NotFound answers every unmatched route
func (handlers *Handlers) NotFound(context *gin.Context) {
	context.JSON(http.StatusNotFound, models.NotFoundResponse{Error: "Not found"})
}

// writeErrorResponse writes the rates failure body; every fetch error kind maps to 500
func (handlers *Handlers) writeErrorResponse(context *gin.Context, message string) {
	context.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   message,
	})
}
