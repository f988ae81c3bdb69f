package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics tracks session lifecycle.
//
// Metrics:
//   - gateway_sessions_active: Live sessions
//   - gateway_sessions_created_total: Sessions created
//   - gateway_sessions_deleted_total: Sessions deleted by clients
//   - gateway_sessions_expired_total: Sessions removed by the idle sweep
type SessionMetrics struct {
	active  prometheus.Gauge
	created prometheus.Counter
	deleted prometheus.Counter
	expired prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics.
func NewSessionMetrics(namespace string, registry *prometheus.Registry) *SessionMetrics {
	sm := &SessionMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live sessions",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_deleted_total",
			Help:      "Total number of sessions deleted by clients",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Total number of sessions removed after the idle timeout",
		}),
	}

	registry.MustRegister(sm.active, sm.created, sm.deleted, sm.expired)
	return sm
}
