package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kingfisher",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total bridge requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kingfisher",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Bridge request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kingfisher",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Staff authentication attempts by outcome.",
		},
		[]string{"outcome"},
	)
	orderReconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kingfisher",
			Subsystem: "orders",
			Name:      "reconciliations_total",
			Help:      "Order create/edit/delete reconciliations by outcome.",
		},
		[]string{"op", "outcome"},
	)
	stockMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kingfisher",
			Subsystem: "orders",
			Name:      "stock_units_total",
			Help:      "Stock units reserved or restored by order reconciliation.",
		},
		[]string{"direction"},
	)
	reportsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kingfisher",
			Subsystem: "reports",
			Name:      "built_total",
			Help:      "Reports built by kind.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, authAttempts, orderReconciliations, stockMovements, reportsBuilt)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordAuthAttempt(outcome string) {
	RegisterMetrics()
	authAttempts.WithLabelValues(outcome).Inc()
}

func RecordReconciliation(op string, err error) {
	RegisterMetrics()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	orderReconciliations.WithLabelValues(op, outcome).Inc()
}

// RecordStockMovement counts units taken out of stock (reserved) or put back (restored)
func RecordStockMovement(reserved, restored int) {
	RegisterMetrics()
	if reserved > 0 {
		stockMovements.WithLabelValues("reserved").Add(float64(reserved))
	}
	if restored > 0 {
		stockMovements.WithLabelValues("restored").Add(float64(restored))
	}
}

func RecordReport(kind string) {
	RegisterMetrics()
	reportsBuilt.WithLabelValues(kind).Inc()
}
