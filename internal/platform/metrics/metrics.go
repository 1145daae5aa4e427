// Package metrics holds the Prometheus instruments for the user service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks per-operation outcomes and latency.
type Metrics struct {
	registry          *prometheus.Registry
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	UsersCreated      prometheus.Counter
}

// New registers every instrument on a private registry, so tests can build
// as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "users_operations_total",
			Help: "User service operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "users_operation_duration_seconds",
			Help:    "Duration of user service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of users created",
		}),
	}
}

// ObserveOperation records one call to operation. Call with time.Now() taken
// at the start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// IncrementUsersCreated records a successful user creation.
func (m *Metrics) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

// Registry exposes the private registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
