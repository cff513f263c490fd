package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.EntitiesBuiltTotal == nil || r.ValidationFailuresTotal == nil || r.BuildDuration == nil {
		t.Fatal("builder metrics not initialized")
	}
	if r.BatchEntities == nil || r.BatchesTotal == nil || r.ConstraintViolations == nil {
		t.Fatal("batch metrics not initialized")
	}

	// registries are independent
	NewRegistry().RecordBuild(EntityNode, time.Millisecond)
	if got := readCounter(t, r, "graphbuilder_entities_built_total", EntityNode); got != 0 {
		t.Errorf("fresh registry counted %v builds", got)
	}
}

func TestRecordBuildAndRejection(t *testing.T) {
	r := NewRegistry()

	r.RecordBuild(EntityNode, 10*time.Microsecond)
	r.RecordBuild(EntityNode, 20*time.Microsecond)
	r.RecordBuild(EntityRelationship, 5*time.Microsecond)
	r.RecordRejection(EntityNode, "labels[2]", time.Microsecond)
	r.RecordRejection(EntityNode, "labels", time.Microsecond)
	r.RecordRejection(EntityRelationship, "properties.DOB", time.Microsecond)

	if got := readCounter(t, r, "graphbuilder_entities_built_total", EntityNode); got != 2 {
		t.Errorf("node builds = %v, want 2", got)
	}
	if got := readCounter(t, r, "graphbuilder_entities_built_total", EntityRelationship); got != 1 {
		t.Errorf("relationship builds = %v, want 1", got)
	}

	var metric dto.Metric
	c, err := r.ValidationFailuresTotal.GetMetricWithLabelValues(EntityNode, "labels")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("labels rejections = %v, want 2 (indexed fields fold to base name)", got)
	}

	h, err := r.BuildDuration.GetMetricWithLabelValues(EntityNode)
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var hm dto.Metric
	if err := h.(interface{ Write(*dto.Metric) error }).Write(&hm); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if got := hm.GetHistogram().GetSampleCount(); got != 4 {
		t.Errorf("node build observations = %d, want 4", got)
	}
}

func TestRecordBatch(t *testing.T) {
	r := NewRegistry()
	r.RecordBatch(3, 2, nil)
	r.RecordBatch(0, 0, errors.New("bad manifest"))
	r.RecordViolations(map[string]int{"Error": 2, "Warning": 1})

	var sb strings.Builder
	if err := r.WriteSummary(&sb); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	out := sb.String()

	for _, line := range []string{
		`graphbuilder_batch_entities{entity="node"} 3`,
		`graphbuilder_batch_entities{entity="relationship"} 2`,
		`graphbuilder_batches_total{status="built"} 1`,
		`graphbuilder_batches_total{status="rejected"} 1`,
		`graphbuilder_constraint_violations_total{severity="Error"} 2`,
	} {
		if !strings.Contains(out, line) {
			t.Errorf("summary missing %q:\n%s", line, out)
		}
	}
	if strings.Contains(out, "graphbuilder_build_duration_seconds") {
		t.Error("histograms should not appear in the summary")
	}
}

func TestBaseField(t *testing.T) {
	tests := map[string]string{
		"":               "none",
		"labels":         "labels",
		"labels[3]":      "labels",
		"properties.DOB": "properties",
		"endpoint":       "endpoint",
	}
	for in, want := range tests {
		if got := baseField(in); got != want {
			t.Errorf("baseField(%q) = %q, want %q", in, got, want)
		}
	}
}

func readCounter(t *testing.T, r *Registry, name, entity string) float64 {
	t.Helper()
	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "entity" && lp.GetValue() == entity {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
