package constraints

import (
	"strings"
	"testing"

	"github.com/dd0wney/cluso-graphbuilder/pkg/builder"
	"github.com/dd0wney/cluso-graphbuilder/pkg/manifest"
)

// setupBatch builds a batch from a YAML manifest
func setupBatch(t *testing.T, doc string) *manifest.Batch {
	t.Helper()
	m, err := manifest.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	batch, err := m.Build(builder.New())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return batch
}

func float(f float64) *float64 { return &f }
