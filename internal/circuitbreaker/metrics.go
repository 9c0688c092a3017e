package circuitbreaker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// breakerMetrics holds Prometheus metrics for circuit breaker activity.
type breakerMetrics struct {
	transitions *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
}

var (
	metricsInstance *breakerMetrics
	metricsOnce     sync.Once
)

func getMetrics() *breakerMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &breakerMetrics{
			transitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "gateway",
					Subsystem: "circuitbreaker",
					Name:      "transitions_total",
					Help:      "Total number of circuit breaker state transitions",
				},
				[]string{"module", "from", "to"},
			),
			outcomes: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "gateway",
					Subsystem: "circuitbreaker",
					Name:      "outcomes_total",
					Help:      "Total number of recorded request outcomes",
				},
				[]string{"module", "outcome"},
			),
		}
	})
	return metricsInstance
}

// recordTransition records a state transition metric.
func recordTransition(module, from, to string) {
	getMetrics().transitions.WithLabelValues(module, from, to).Inc()
}

// recordOutcome records a success/failure outcome metric.
func recordOutcome(module, outcome string) {
	getMetrics().outcomes.WithLabelValues(module, outcome).Inc()
}
