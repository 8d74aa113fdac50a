// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_submitted_total",
			Help: "Lead submissions by pipeline outcome",
		},
		[]string{"outcome"},
	)

	leadNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Lead notifications by final result",
		},
		[]string{"result"},
	)

	leadNotificationAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_notification_attempts",
			Help:    "Attempts needed per lead notification",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	rateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route", "banned"},
	)

	auditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit entries that could not be written",
		},
	)

	maintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maintenance_removed_total",
			Help: "Rows or entries removed by maintenance jobs",
		},
		[]string{"job"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		path := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func RecordLeadOutcome(outcome string) {
	leadsSubmitted.WithLabelValues(outcome).Inc()
}

func RecordNotification(success bool, attempts int) {
	result := "failed"
	if success {
		result = "sent"
	}
	leadNotifications.WithLabelValues(result).Inc()
	leadNotificationAttempts.Observe(float64(attempts))
}

func RecordRateLimitRejection(route string, banned bool) {
	rateLimitRejections.WithLabelValues(route, strconv.FormatBool(banned)).Inc()
}

func RecordAuditFailure() {
	auditWriteFailures.Inc()
}

func RecordMaintenance(job string, removed int64) {
	maintenanceRuns.WithLabelValues(job).Add(float64(removed))
}
