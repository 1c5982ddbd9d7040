package handler

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	emailsSent          *prometheus.CounterVec
	emailsFailed        *prometheus.CounterVec
	rateLimitDenials    prometheus.Counter
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		emailsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_sent_total",
				Help: "Total number of emails accepted by the delivery provider",
			},
			[]string{"event_kind"},
		),
		emailsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_failed_total",
				Help: "Total number of email dispatches that did not result in a send",
			},
			[]string{"event_kind", "reason"},
		),
		rateLimitDenials: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limit_denials_total",
				Help: "Total number of requests denied by the admission window",
			},
		),
	}
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEmailSent records a provider-accepted dispatch
func (m *Metrics) RecordEmailSent(eventKind string) {
	m.emailsSent.WithLabelValues(eventKind).Inc()
}

// RecordEmailFailed records a dispatch that terminated without a send
func (m *Metrics) RecordEmailFailed(eventKind, reason string) {
	m.emailsFailed.WithLabelValues(eventKind, reason).Inc()
}

// RecordRateLimitDenial records an admission denial
func (m *Metrics) RecordRateLimitDenial() {
	m.rateLimitDenials.Inc()
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
