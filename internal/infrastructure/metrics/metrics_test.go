package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/api/sales/:id", 200, 15*time.Millisecond)
	m.ObserveHTTP("GET", "/api/sales/:id", 200, 5*time.Millisecond)
	m.ObserveHTTP("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/sales/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpDuration))
}

func TestMetrics_Sales(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.SaleCreated(299.7)
	m.SaleCreated(0)
	m.PaymentRecorded("Completed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesCreated))
	assert.InDelta(t, 299.7, testutil.ToFloat64(m.salesRevenue), 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.paymentsRecorded.WithLabelValues("Completed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
		m.SaleCreated(10)
		m.PaymentRecorded("Pending")
	})
}
