package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	Checkouts    *prometheus.CounterVec
}

func New(service string) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopcart",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopcart",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopcart",
		Subsystem: service,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})

	prometheus.MustRegister(requests, latency, checkouts)
	return &Metrics{HTTPRequests: requests, LatencyMS: latency, Checkouts: checkouts}
}

// RecordCheckout is nil-safe so services can run without metrics in tests.
func (m *Metrics) RecordCheckout(result string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
