package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Checkout metrics
	CheckoutsTotal         *prometheus.CounterVec
	CheckoutDuration       *prometheus.HistogramVec
	RecorderDecisionsTotal *prometheus.CounterVec
	PaymentCallbacksTotal  *prometheus.CounterVec
	PaymentStatesTotal     *prometheus.CounterVec
	OrderStatusTotal       *prometheus.CounterVec
}

// New creates a new Metrics instance registered with reg. A nil reg uses the
// default Prometheus registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "checkout"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Checkout metrics
		CheckoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "submissions_total",
				Help:      "Total number of checkout submissions by result",
			},
			[]string{"operation", "result"}, // result: pending, declined, authorized, rejected, error
		),
		CheckoutDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "duration_seconds",
				Help:      "Checkout submission duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		RecorderDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "recorder_decisions_total",
				Help:      "Total number of payment recorder decisions per method",
			},
			[]string{"method", "decision"}, // decision: recycle, void_and_recharge, fresh
		),
		PaymentCallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "callbacks_total",
				Help:      "Total number of payment method callbacks",
			},
			[]string{"method", "step", "status"},
		),
		PaymentStatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "states_total",
				Help:      "Total number of payment method states produced by checkouts",
			},
			[]string{"status"},
		),
		OrderStatusTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "status_changes_total",
				Help:      "Total number of order status transitions",
			},
			[]string{"from", "to"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCheckout records a checkout submission and its result.
func (m *Metrics) RecordCheckout(operation, result string, duration time.Duration) {
	m.CheckoutsTotal.WithLabelValues(operation, result).Inc()
	m.CheckoutDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRecorderDecision records what the payment recorder did for a method.
func (m *Metrics) RecordRecorderDecision(method, decision string) {
	m.RecorderDecisionsTotal.WithLabelValues(method, decision).Inc()
}

// RecordCallback records a payment method callback and the state it produced.
func (m *Metrics) RecordCallback(method, step, status string) {
	m.PaymentCallbacksTotal.WithLabelValues(method, step, status).Inc()
}

// RecordPaymentState records a payment method state returned to a client.
func (m *Metrics) RecordPaymentState(status string) {
	m.PaymentStatesTotal.WithLabelValues(status).Inc()
}

// RecordOrderStatus records an order status transition.
func (m *Metrics) RecordOrderStatus(from, to string) {
	m.OrderStatusTotal.WithLabelValues(from, to).Inc()
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
