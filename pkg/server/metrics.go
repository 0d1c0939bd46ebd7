package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for live sessions.
//
// Exposed series:
//   - loom_server_active_sessions: gauge of connected sessions
//   - loom_server_events_total: counter of client events by status
//   - loom_server_event_duration_seconds: event handling histogram
//   - loom_server_patch_ops_total: counter of mutation ops streamed
//   - loom_server_websocket_errors_total: counter of ws errors by type
type Metrics struct {
	ActiveSessions prometheus.Gauge
	EventsTotal    *prometheus.CounterVec
	EventDuration  prometheus.Histogram
	PatchOps       prometheus.Counter
	WSErrors       *prometheus.CounterVec
}

// NewMetrics registers the server metrics on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "loom",
			Subsystem: "server",
			Name:      "active_sessions",
			Help:      "Number of connected live sessions",
		}),

		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "server",
			Name:      "events_total",
			Help:      "Total client events processed",
		}, []string{"status"}),

		EventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "loom",
			Subsystem: "server",
			Name:      "event_duration_seconds",
			Help:      "Event handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		PatchOps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "server",
			Name:      "patch_ops_total",
			Help:      "Total mutation ops streamed to clients",
		}),

		WSErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loom",
			Subsystem: "server",
			Name:      "websocket_errors_total",
			Help:      "Total websocket errors by type",
		}, []string{"type"}),
	}
}
