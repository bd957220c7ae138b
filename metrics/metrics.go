// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "schema_registry"

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Registry metrics
	SchemasCreated   prometheus.Counter
	InstancesCreated prometheus.Counter
	ListSkipped      *prometheus.CounterVec

	// Watcher metrics
	WatchEvents *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
// Passing nil registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of registry operations invoked",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of registry operations in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),

		SchemasCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schemas_created_total",
			Help:      "Total number of schemas created",
		}),
		InstancesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_created_total",
			Help:      "Total number of instances generated from schemas",
		}),
		ListSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_list_skipped_files_total",
			Help:      "Total number of schema files skipped while listing",
		}, []string{"reason"}),

		WatchEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Total number of schema directory changes observed",
		}, []string{"op"}),
	}
}

// RecordOperation records a completed operation.
func (m *Metrics) RecordOperation(operation string, err error, durationSeconds float64) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordSchemaCreated records a new schema being stored.
func (m *Metrics) RecordSchemaCreated() {
	m.SchemasCreated.Inc()
}

// RecordInstanceCreated records an instance being generated.
func (m *Metrics) RecordInstanceCreated() {
	m.InstancesCreated.Inc()
}

// RecordListSkipped records a schema file left out of a listing.
func (m *Metrics) RecordListSkipped(reason string) {
	m.ListSkipped.WithLabelValues(reason).Inc()
}

// RecordWatchEvent records a change in the schema directory.
func (m *Metrics) RecordWatchEvent(op string) {
	m.WatchEvents.WithLabelValues(op).Inc()
}
