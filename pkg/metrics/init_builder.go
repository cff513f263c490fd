package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuilderMetrics() {
	r.EntitiesBuiltTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphbuilder_entities_built_total",
			Help: "Total number of entities that passed validation and were built",
		},
		[]string{"entity"}, // node, relationship
	)

	r.ValidationFailuresTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphbuilder_validation_failures_total",
			Help: "Total number of rejected build requests by offending field",
		},
		[]string{"entity", "field"},
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphbuilder_build_duration_seconds",
			Help:    "Time spent validating and constructing one entity",
			Buckets: []float64{.000001, .00001, .0001, .001, .01, .1},
		},
		[]string{"entity"},
	)
}

func (r *Registry) initBatchMetrics() {
	r.BatchEntities = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphbuilder_batch_entities",
			Help: "Number of entities in the most recently built batch",
		},
		[]string{"entity"},
	)

	r.BatchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphbuilder_batches_total",
			Help: "Total number of manifest batches processed",
		},
		[]string{"status"}, // built, rejected
	)

	r.ConstraintViolations = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphbuilder_constraint_violations_total",
			Help: "Total number of constraint violations found in built batches",
		},
		[]string{"severity"},
	)
}
