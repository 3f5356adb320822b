package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はPrometheus向けのメトリクスをまとめます。
// nil の *Metrics に対する呼び出しは何もしません。
type Metrics struct {
	registry     *prometheus.Registry
	predictions  *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sales_api_predictions_total",
				Help: "Total number of prediction requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		modelLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sales_api_model_latency_seconds",
				Help:    "Model invocation duration",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.02, 0.1, 0.5, 1},
			},
			[]string{"model"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sales_api_prediction_cache_lookups_total",
				Help: "Prediction cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.predictions,
		m.modelLatency,
		m.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveOutcome counts one request on endpoint.
func (m *Metrics) ObserveOutcome(endpoint string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.predictions.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveModel records how long a model invocation took.
func (m *Metrics) ObserveModel(model string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
