package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for searches, provider calls and the store.
type Metrics struct {
	Searches        *prometheus.CounterVec   // labels: outcome={ok,invalid,error}
	FetchFallbacks  *prometheus.CounterVec   // labels: kind={current,forecast}
	ProviderLatency *prometheus.HistogramVec // labels: kind={current,forecast}
	StoreErrors     *prometheus.CounterVec   // labels: op
	LiveMode        prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_lookup",
			Name:      "searches_total",
			Help:      "City searches by outcome.",
		}, []string{"outcome"}),
		FetchFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_lookup",
			Name:      "fetch_fallbacks_total",
			Help:      "Live provider failures replaced by mock data.",
		}, []string{"kind"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_lookup",
			Name:      "provider_request_duration_seconds",
			Help:      "Live provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_lookup",
			Name:      "store_errors_total",
			Help:      "Failed store operations by operation name.",
		}, []string{"op"}),
		LiveMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_lookup",
			Name:      "live_mode",
			Help:      "1 when a provider credential is configured, 0 in demo mode.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.Searches, m.FetchFallbacks, m.ProviderLatency, m.StoreErrors, m.LiveMode)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
