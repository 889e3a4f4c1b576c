package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resort_conditions"

// Metrics holds the Prometheus collectors for upstream fetching and fallback decisions.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: source, outcome={success,network_error,status_error,parse_error,config_error,circuit_open}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	FallbackResults  *prometheus.CounterVec   // labels: kind, outcome={success,exhausted,synthesized}
	UpstreamUp       *prometheus.GaugeVec     // labels: source
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream adapter attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of a single upstream adapter attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		FallbackResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_results_total",
			Help:      "Fallback chain results by data kind and outcome.",
		}, []string{"kind", "outcome"}),
		UpstreamUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_up",
			Help:      "1 when the last availability probe of the source succeeded, 0 otherwise.",
		}, []string{"source"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.FallbackResults,
		m.UpstreamUp,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exported, for short-lived processes
// such as the CLI that have no metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
