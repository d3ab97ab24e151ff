// Package metrics exposes Prometheus metrics for the auth gateway: storage
// backend operations, authentication events and HTTP requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webauth"

// Metrics holds every collector. Pass it to the components that record.
type Metrics struct {
	BackendOps      *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	AuthEvents      *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		BackendOps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_operations_total",
				Help:      "Storage backend operations by outcome",
			},
			[]string{"backend", "op", "result"}, // op=get/set/delete, result=hit/miss/ok/error
		),
		BackendDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_operation_duration_seconds",
				Help:      "Storage backend operation latency",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"backend", "op"},
		),
		AuthEvents: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Authentication flow events",
			},
			[]string{"event", "client"}, // event=challenge/login/login_failed/logout/denied
		),
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status class",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// Auth events recorded by the flow.
const (
	EventChallenge   = "challenge"
	EventLogin       = "login"
	EventLoginFailed = "login_failed"
	EventLogout      = "logout"
	EventDenied      = "denied"
)

// AuthEvent counts one flow event. Safe on a nil receiver.
func (m *Metrics) AuthEvent(event, client string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, client).Inc()
}
