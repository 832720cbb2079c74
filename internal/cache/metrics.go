package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dalfonso89/gbp-rates-service/internal/models"
)

type metrics struct {
	requests *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	return &metrics{
		requests: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gbp_rates",
				Subsystem: "cache",
				Name:      "requests_total",
				Help:      "cache lookups by result",
			}, []string{"result"}),
	}
}

type instrumented struct {
	next    Cache
	metrics *metrics
}

// WithMetrics decorates next with hit/miss counters registered on registerer.
// A nil registerer leaves the counters unregistered.
func WithMetrics(next Cache, registerer prometheus.Registerer) Cache {
	return &instrumented{next: next, metrics: newMetrics(registerer)}
}

func (c *instrumented) Get(ctx context.Context, key string) (models.RatesResult, bool) {
	value, found := c.next.Get(ctx, key)
	if found {
		c.metrics.requests.WithLabelValues("hit").Inc()
	} else {
		c.metrics.requests.WithLabelValues("miss").Inc()
	}
	return value, found
}

func (c *instrumented) Set(ctx context.Context, key string, value models.RatesResult) {
	c.next.Set(ctx, key, value)
}

func (c *instrumented) Delete(ctx context.Context, key string) {
	c.next.Delete(ctx, key)
}

func (c *instrumented) Flush(ctx context.Context) {
	c.next.Flush(ctx)
}
