package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the API and worker export. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	sweptRecords   *prometheus.CounterVec
	storageErrors  *prometheus.CounterVec
	emailsSent     *prometheus.CounterVec
	maintenanceRun *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "workforce",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sweptRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "maintenance_records_removed_total",
			Help:      "Records removed by maintenance sweeps.",
		}, []string{"kind"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "storage_delete_errors_total",
			Help:      "Object deletions that failed and were skipped.",
		}, []string{"source"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "emails_total",
			Help:      "Outbound emails by final status.",
		}, []string{"status"}),
		maintenanceRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "maintenance_tasks_total",
			Help:      "Maintenance task executions by type and outcome.",
		}, []string{"task", "outcome"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.sweptRecords,
		m.storageErrors,
		m.emailsSent,
		m.maintenanceRun,
	)
	return m
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordsRemoved(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweptRecords.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) StorageDeleteFailed(source string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(source).Inc()
}

func (m *Metrics) EmailFinished(status string) {
	if m == nil {
		return
	}
	m.emailsSent.WithLabelValues(status).Inc()
}

func (m *Metrics) TaskFinished(task string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.maintenanceRun.WithLabelValues(task, outcome).Inc()
}
