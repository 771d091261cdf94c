// Package metric provides Prometheus metrics for the reclaim pipeline.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics for the recovery pipeline.
type Metrics struct {
	// Message metrics
	MessagesReceived  *prometheus.CounterVec
	MessagesProcessed *prometheus.CounterVec
	MessagesPublished *prometheus.CounterVec
	ProcessingSeconds *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec

	// Recovery metrics
	OperationsTotal  *prometheus.CounterVec
	CompressionRatio prometheus.Histogram
	DecodeRetries    prometheus.Counter

	// NATS metrics
	NATSConnected prometheus.Gauge
	NATSFailures  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "messages",
				Name:      "received_total",
				Help:      "Total number of messages received",
			},
			[]string{"component"},
		),

		MessagesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "messages",
				Name:      "processed_total",
				Help:      "Total number of messages processed",
			},
			[]string{"component", "status"},
		),

		MessagesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "messages",
				Name:      "published_total",
				Help:      "Total number of messages published",
			},
			[]string{"component", "subject"},
		),

		ProcessingSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "reclaim",
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Message processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"component", "operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "class"},
		),

		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "recovery",
				Name:      "operations_total",
				Help:      "Recovery outcomes by operation tag",
			},
			[]string{"operation"},
		),

		CompressionRatio: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "reclaim",
				Subsystem: "recovery",
				Name:      "compression_ratio",
				Help:      "Achieved compression ratio on the compress path",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 10),
			},
		),

		DecodeRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "recovery",
				Name:      "decode_retries_total",
				Help:      "Offset-skipped LZ4 decode retries attempted",
			},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "reclaim",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "reclaim",
				Subsystem: "nats",
				Name:      "failures_total",
				Help:      "NATS connection failures",
			},
		),
	}
}

// Register registers every metric with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.MessagesReceived,
		m.MessagesProcessed,
		m.MessagesPublished,
		m.ProcessingSeconds,
		m.ErrorsTotal,
		m.OperationsTotal,
		m.CompressionRatio,
		m.DecodeRetries,
		m.NATSConnected,
		m.NATSFailures,
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
