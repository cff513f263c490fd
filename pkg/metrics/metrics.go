package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initBuilderMetrics()
	r.initBatchMetrics()

	return r
}

// Gatherer exposes the underlying registry, e.g. for promhttp or tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordBuild records a successful entity build with its duration
func (r *Registry) RecordBuild(entity string, duration time.Duration) {
	r.EntitiesBuiltTotal.WithLabelValues(entity).Inc()
	r.BuildDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

// RecordRejection records a build request rejected on field. Indexed fields
// such as "labels[3]" or "properties.DOB" are folded to their base name to
// keep label cardinality bounded.
func (r *Registry) RecordRejection(entity, field string, duration time.Duration) {
	r.ValidationFailuresTotal.WithLabelValues(entity, baseField(field)).Inc()
	r.BuildDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

// RecordBatch records the outcome of a manifest batch
func (r *Registry) RecordBatch(nodes, relationships int, err error) {
	if err != nil {
		r.BatchesTotal.WithLabelValues("rejected").Inc()
		return
	}
	r.BatchesTotal.WithLabelValues("built").Inc()
	r.BatchEntities.WithLabelValues(EntityNode).Set(float64(nodes))
	r.BatchEntities.WithLabelValues(EntityRelationship).Set(float64(relationships))
}

// RecordViolations adds constraint violations counted per severity
func (r *Registry) RecordViolations(bySeverity map[string]int) {
	for severity, n := range bySeverity {
		r.ConstraintViolations.WithLabelValues(severity).Add(float64(n))
	}
}

// WriteSummary writes every non-histogram sample as "name{labels} value",
// one per line, sorted by name.
func (r *Registry) WriteSummary(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value, ok := sampleValue(mf.GetType(), m)
			if !ok {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), formatLabels(m.GetLabel()), value); err != nil {
				return err
			}
		}
	}
	return nil
}

func sampleValue(t dto.MetricType, m *dto.Metric) (float64, bool) {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue(), true
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue(), true
	default:
		return 0, false
	}
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func baseField(field string) string {
	if field == "" {
		return "none"
	}
	if i := strings.IndexAny(field, "[."); i > 0 {
		return field[:i]
	}
	return field
}
