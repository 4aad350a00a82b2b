package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes prometheus collectors for the HTTP surface and presence counter.
type Metrics struct {
	requests       *prometheus.CounterVec
	errors         *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	presenceOnline prometheus.Gauge
	gatherer       prometheus.Gatherer
}

// NewMetrics registers collectors on reg. A nil reg gets a private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_errors_total",
			Help: "Error responses by error code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		presenceOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_presence_online",
			Help: "Sessions seen within the online window at the last count.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.requests, m.errors, m.latency, m.presenceOnline)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// SetPresenceOnline publishes the latest online count.
func (m *Metrics) SetPresenceOnline(count int) {
	if m == nil {
		return
	}
	m.presenceOnline.Set(float64(count))
}

// Handler returns the prometheus scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
