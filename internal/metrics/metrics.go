package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the HTTP surface, the rental
// workflows and the scheduled jobs.
type Metrics struct {
	// Registry owns every collector below and backs the /metrics endpoint.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// New registers all collectors in a private registry, so it can be called
// once per test without duplicate registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "driverent_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverent_workflow_transitions_total",
				Help: "Committed state transitions of requests and contracts.",
			},
			[]string{"entity", "status"},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverent_job_runs_total",
				Help: "Scheduled job runs by outcome.",
			},
			[]string{"job", "result"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "driverent_notifications_total",
				Help: "Counterpart e-mail notifications by kind and outcome.",
			},
			[]string{"kind", "result"},
		),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// IncTransition counts a committed move of entity ("solicitacao", "contrato",
// "aluguel") into status.
func (m *Metrics) IncTransition(entity, status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, status).Inc()
}

func (m *Metrics) IncJobRun(job string, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, result(err)).Inc()
}

func (m *Metrics) IncNotification(kind string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
