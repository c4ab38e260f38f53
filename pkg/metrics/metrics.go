package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch results recorded by the API when handing mail to the queue.
const (
	DispatchQueued   = "queued"
	DispatchFailed   = "failed"
	DispatchDisabled = "disabled"
)

var (
	mailDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_mail_dispatch_total",
			Help: "Mail jobs handed to the queue by the API, by template and result",
		},
		[]string{"template", "result"},
	)

	mailConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_mail_consumed_total",
			Help: "Mail jobs consumed by the email worker",
		},
		[]string{"template"},
	)

	mailSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_mail_sent_total",
			Help: "Emails delivered to the transport successfully",
		},
		[]string{"template"},
	)

	mailFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_mail_failed_total",
			Help: "Emails dropped after exhausting retries or on permanent errors",
		},
		[]string{"template", "reason"},
	)

	mailRetryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_mail_retry_attempts_total",
			Help: "Delivery retry attempts",
		},
		[]string{"template"},
	)

	mailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_mail_send_duration_seconds",
			Help:    "Transport send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"template"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accounts_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

func RecordMailDispatch(template, result string) {
	mailDispatchTotal.WithLabelValues(template, result).Inc()
}

func RecordMailConsumed(template string) {
	mailConsumedTotal.WithLabelValues(template).Inc()
}

func RecordMailSent(template string, d time.Duration) {
	mailSentTotal.WithLabelValues(template).Inc()
	mailSendDuration.WithLabelValues(template).Observe(d.Seconds())
}

func RecordMailFailed(template, reason string) {
	mailFailedTotal.WithLabelValues(template, reason).Inc()
}

func RecordMailRetry(template string) {
	mailRetryTotal.WithLabelValues(template).Inc()
}

func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordRateLimited(route string) {
	rateLimitedTotal.WithLabelValues(route).Inc()
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
