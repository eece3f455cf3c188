package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenith",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zenith",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	TasksSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenith",
			Name:      "tasks_submitted_total",
			Help:      "Tasks accepted into the queue.",
		},
		[]string{"type", "priority"},
	)

	TasksStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenith",
			Name:      "tasks_started_total",
			Help:      "Tasks claimed for execution.",
		},
		[]string{"type"},
	)

	TasksCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenith",
			Name:      "tasks_completed_total",
			Help:      "Tasks completed successfully.",
		},
		[]string{"type"},
	)

	TasksFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zenith",
			Name:      "tasks_failed_total",
			Help:      "Tasks that ended failed, by reason.",
		},
		[]string{"type", "reason"},
	)

	TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zenith",
			Name:      "task_duration_seconds",
			Help:      "Task execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zenith",
			Name:      "queue_depth",
			Help:      "Tasks currently waiting in the priority queue.",
		},
	)

	TasksInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zenith",
			Name:      "tasks_in_flight",
			Help:      "Tasks currently being processed.",
		},
	)

	DocumentsTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "zenith",
			Name:      "documents_tracked",
			Help:      "Documents currently registered.",
		},
	)
)

var registerOnce sync.Once

// RegisterMetrics installs the collectors on the default registry. Safe to
// call more than once; only the first call registers.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			TasksSubmittedTotal,
			TasksStartedTotal,
			TasksCompletedTotal,
			TasksFailedTotal,
			TaskDuration,
			QueueDepth,
			TasksInFlight,
			DocumentsTracked,
		)
	})
}
