package mymetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type OperationMetrics struct {
	registry   *prometheus.Registry
	Operations *prometheus.CounterVec
	LatencyMS  *prometheus.HistogramVec
}

// New registers on a private registry so multiple instances can live in one process
func New(namespace string, subsystem string) *OperationMetrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operations_total",
		Help:      "Total number of operations by outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operation_duration_ms",
		Help:      "Operation latency in milliseconds.",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	}, []string{"operation"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(operations, latency)

	return &OperationMetrics{
		registry:   registry,
		Operations: operations,
		LatencyMS:  latency,
	}
}

func (m *OperationMetrics) Observe(operation string, outcome string, start time.Time) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.LatencyMS.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}

func (m *OperationMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
