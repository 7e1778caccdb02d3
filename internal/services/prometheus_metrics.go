package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by PrometheusMetrics. Unknown names are ignored.
const (
	MetricAuthenticationEvent = "authentication_event"
	MetricJobEnqueued         = "notification_job.enqueued"
	MetricJobProcessed        = "notification_job.processed"
	MetricJobRetry            = "notification_job.retry"
	MetricJobProcessing       = "notification_job.processing"
	MetricEmailSent           = "email.sent"
	MetricGoalConflict        = "goal.progress_conflict"
	MetricDeadlineScan        = "deadline_scan"
	MetricQueueDepth          = "queue_depth"
	MetricCircuitBreakerState = "circuit_breaker_state"
)

type PrometheusMetrics struct {
	jobsEnqueued              *prometheus.CounterVec
	jobsProcessed             *prometheus.CounterVec
	jobDuration               prometheus.Histogram
	retryAttempts             prometheus.Counter
	queueDepth                *prometheus.GaugeVec
	emailsSent                *prometheus.CounterVec
	circuitBreakerState       *prometheus.GaugeVec
	goalConflicts             prometheus.Counter
	deadlineScanDuration      prometheus.Histogram
	deadlineNotifications     prometheus.Counter
	authenticationEventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors with reg. A nil reg uses the
// default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		jobsEnqueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_jobs_enqueued_total",
				Help: "Total number of notification jobs published",
			},
			[]string{"notification_type"},
		),
		jobsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_jobs_processed_total",
				Help: "Total number of notification jobs processed",
			},
			[]string{"status"},
		),
		jobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "notification_job_duration_milliseconds",
				Help:    "Notification job processing duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		retryAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "notification_job_retry_attempts_total",
				Help: "Total number of notification job retries",
			},
		),
		queueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "notification_queue_depth",
				Help: "Current number of notification jobs by status",
			},
			[]string{"status"},
		),
		emailsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_emails_total",
				Help: "Total number of notification emails attempted",
			},
			[]string{"status"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		goalConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "goal_progress_conflicts_total",
				Help: "Total number of goal progress updates that lost an optimistic lock race",
			},
		),
		deadlineScanDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "goal_deadline_scan_duration_milliseconds",
				Help:    "Goal deadline scan duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
		),
		deadlineNotifications: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "goal_deadline_notifications_total",
				Help: "Total number of goal deadline reminders published",
			},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case MetricJobEnqueued:
		m.jobsEnqueued.WithLabelValues(tags["notification_type"]).Inc()
	case MetricJobProcessed:
		if status != "" {
			m.jobsProcessed.WithLabelValues(status).Inc()
		}
	case MetricJobRetry:
		m.retryAttempts.Inc()
	case MetricEmailSent:
		if status != "" {
			m.emailsSent.WithLabelValues(status).Inc()
		}
	case MetricGoalConflict:
		m.goalConflicts.Inc()
	case MetricDeadlineScan:
		m.deadlineNotifications.Inc()
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricJobProcessing:
		m.jobDuration.Observe(float64(duration.Milliseconds()))
	case MetricDeadlineScan:
		m.deadlineScanDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricCircuitBreakerState:
		if service := tags["service"]; service != "" {
			m.circuitBreakerState.WithLabelValues(service).Set(value)
		}
	case MetricQueueDepth:
		if status := tags["status"]; status != "" {
			m.queueDepth.WithLabelValues(status).Set(value)
		}
	}
}

// NoopMetrics discards everything. Used by one-shot commands.
type NoopMetrics struct{}

func (NoopMetrics) IncrementCounter(string, map[string]string)     {}
func (NoopMetrics) RecordProcessingTime(string, time.Duration)     {}
func (NoopMetrics) RecordGauge(string, float64, map[string]string) {}
