// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups HTTP and sales collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	salesCreated     prometheus.Counter
	salesRevenue     prometheus.Counter
	paymentsRecorded *prometheus.CounterVec
}

// New creates the collectors and registers them on registerer
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		salesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_created_total",
			Help: "Sales created.",
		}),
		salesRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_revenue_total",
			Help: "Final amount of created sales, in currency units.",
		}),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_payments_recorded_total",
			Help: "Payments recorded by status.",
		}, []string{"status"}),
	}

	registerer.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.salesCreated,
		m.salesRevenue,
		m.paymentsRecorded,
	)
	return m
}

// ObserveHTTP records one served request. route is the matched route
// template, never the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SaleCreated counts a new sale and adds its final amount to revenue
func (m *Metrics) SaleCreated(finalAmount float64) {
	if m == nil {
		return
	}
	m.salesCreated.Inc()
	if finalAmount > 0 {
		m.salesRevenue.Add(finalAmount)
	}
}

// PaymentRecorded counts a recorded payment by status
func (m *Metrics) PaymentRecorded(status string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(status).Inc()
}
