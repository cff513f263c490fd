package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the builder metrics. Each Registry owns a private
// prometheus.Registry, so independent builders never share collectors.
type Registry struct {
	// Builder Metrics
	EntitiesBuiltTotal      *prometheus.CounterVec
	ValidationFailuresTotal *prometheus.CounterVec
	BuildDuration           *prometheus.HistogramVec

	// Batch Metrics
	BatchEntities        *prometheus.GaugeVec
	BatchesTotal         *prometheus.CounterVec
	ConstraintViolations *prometheus.CounterVec

	registry *prometheus.Registry
}

// Entity label values
const (
	EntityNode         = "node"
	EntityRelationship = "relationship"
)
