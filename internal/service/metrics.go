package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type fetchMetrics struct {
	duration *prometheus.HistogramVec
}

func newFetchMetrics(registerer prometheus.Registerer) *fetchMetrics {
	return &fetchMetrics{
		duration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gbp_rates",
				Subsystem: "upstream",
				Name:      "fetch_duration_seconds",
				Help:      "exchange rate API call duration by outcome",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"outcome"}),
	}
}

func (m *fetchMetrics) observe(started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = KindUpstream.String()
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			outcome = fetchErr.Kind.String()
		}
	}
	m.duration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
