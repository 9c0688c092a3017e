package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// gatewayMetrics holds Prometheus metrics for the gateway middleware.
type gatewayMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	shortCircuitsTotal *prometheus.CounterVec
	timeoutsTotal      *prometheus.CounterVec
	rateLimitRejected  *prometheus.CounterVec
	panicsRecovered    prometheus.Counter
}

var (
	gatewayMetricsInstance *gatewayMetrics
	gatewayMetricsOnce     sync.Once
)

// getGatewayMetrics returns the singleton gateway metrics instance.
func getGatewayMetrics() *gatewayMetrics {
	gatewayMetricsOnce.Do(func() {
		gatewayMetricsInstance = newGatewayMetrics()
	})
	return gatewayMetricsInstance
}

func newGatewayMetrics() *gatewayMetrics {
	return &gatewayMetrics{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of routed requests by module and status class",
			},
			[]string{"module", "status_class"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gateway",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Routed request duration by module",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"module"},
		),
		shortCircuitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "http",
				Name:      "short_circuits_total",
				Help:      "Total number of requests rejected because the module's circuit was open",
			},
			[]string{"module"},
		),
		timeoutsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "http",
				Name:      "request_timeouts_total",
				Help:      "Total number of request timeouts by module",
			},
			[]string{"module"},
		),
		rateLimitRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "http",
				Name:      "rate_limit_rejected_total",
				Help:      "Total number of requests rejected by route rate limits",
			},
			[]string{"module"},
		),
		panicsRecovered: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gateway",
				Subsystem: "http",
				Name:      "panics_recovered_total",
				Help:      "Total number of handler panics recovered",
			},
		),
	}
}

// observeRequest records the request counter and duration histogram.
func (m *gatewayMetrics) observeRequest(module string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(module, statusClass(status)).Inc()
	m.requestDuration.WithLabelValues(module).Observe(elapsed.Seconds())
}

// statusClass collapses a status code into its class label ("2xx", "5xx", ...).
func statusClass(status int) string {
	return fmt.Sprintf("%dxx", status/100)
}
