// Package manifest loads graph entity descriptions from YAML and builds them
// into a Batch through a builder.Builder.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphbuilder/pkg/builder"
	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// Manifest is the decoded, not yet validated, description of a batch.
type Manifest struct {
	Nodes         []NodeEntry         `yaml:"nodes" json:"nodes"`
	Relationships []RelationshipEntry `yaml:"relationships" json:"relationships"`
}

// NodeEntry describes one node. Key names the node inside the manifest so
// relationship entries can reference it.
type NodeEntry struct {
	Key        string         `yaml:"key" json:"key"`
	Labels     []string       `yaml:"labels" json:"labels"`
	Properties map[string]any `yaml:"properties" json:"properties"`
}

// RelationshipEntry describes one relationship candidate. Direction stays a
// plain string here so that an unknown literal is reported by the Builder.
type RelationshipEntry struct {
	Types      []string       `yaml:"types" json:"types"`
	Properties map[string]any `yaml:"properties" json:"properties"`
	Direction  string         `yaml:"direction" json:"direction"`
	Endpoint   string         `yaml:"endpoint" json:"endpoint"`
}

var (
	ErrMissingKey      = errors.New("node key is required")
	ErrDuplicateKey    = errors.New("duplicate node key")
	ErrUnknownEndpoint = errors.New("endpoint does not name a node in this manifest")
	ErrEmptyManifest   = errors.New("manifest contains no nodes")
)

// Parse decodes a manifest. JSON input is accepted as a YAML subset. Unknown
// fields are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyManifest
		}
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// LoadFile parses the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Build constructs every node and then every relationship candidate through
// b. It is all-or-nothing: the first invalid entry aborts the build and no
// Batch is returned. Errors from the Builder are wrapped, so
// validation.AsValidationError still finds them.
func (m *Manifest) Build(b *builder.Builder) (*Batch, error) {
	if len(m.Nodes) == 0 {
		return nil, ErrEmptyManifest
	}

	batch := newBatch()

	for i, entry := range m.Nodes {
		if entry.Key == "" {
			return nil, fmt.Errorf("nodes[%d]: %w", i, ErrMissingKey)
		}
		if _, dup := batch.byKey[entry.Key]; dup {
			return nil, fmt.Errorf("nodes[%d] (%s): %w", i, entry.Key, ErrDuplicateKey)
		}

		node, err := b.MakeNode(entry.Labels, entry.Properties)
		if err != nil {
			return nil, fmt.Errorf("nodes[%d] (%s): %w", i, entry.Key, err)
		}
		batch.addNode(entry.Key, node)
	}

	for i, entry := range m.Relationships {
		endpoint, ok := batch.byKey[entry.Endpoint]
		if !ok {
			return nil, fmt.Errorf("relationships[%d] (endpoint %q): %w", i, entry.Endpoint, ErrUnknownEndpoint)
		}

		rel, err := b.MakeRelationshipCandidate(entry.Types, entry.Properties, entity.Direction(entry.Direction), endpoint)
		if err != nil {
			return nil, fmt.Errorf("relationships[%d]: %w", i, err)
		}
		batch.relationships = append(batch.relationships, rel)
	}

	return batch, nil
}
