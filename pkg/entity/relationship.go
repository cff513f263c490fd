package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// RelationshipCandidate is a directed edge descriptor anchored on one known
// endpoint. The other endpoint is resolved downstream before persistence.
//
// Endpoint is a non-owning reference: candidates built from the same node
// point at the same *Node.
type RelationshipCandidate struct {
	Types      []string       `json:"types" yaml:"types"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Direction  Direction      `json:"direction" yaml:"direction"`
	Endpoint   *Node          `json:"endpoint" yaml:"endpoint"`
}

// HasType checks if the candidate carries a specific relationship type
func (r *RelationshipCandidate) HasType(relType string) bool {
	return slices.Contains(r.Types, relType)
}

// GetProperty gets a property value
func (r *RelationshipCandidate) GetProperty(key string) (any, bool) {
	val, ok := r.Properties[key]
	return val, ok
}

// Clone returns a deep copy of the candidate, including its endpoint
func (r *RelationshipCandidate) Clone() (*RelationshipCandidate, error) {
	if r == nil {
		return nil, nil
	}
	var out RelationshipCandidate
	if err := deepcopy.Copy(&out, *r); err != nil {
		return nil, fmt.Errorf("clone relationship candidate: %w", err)
	}
	return &out, nil
}

func (r *RelationshipCandidate) String() string {
	rel := fmt.Sprintf("[:%s %v]", strings.Join(r.Types, ":"), r.Properties)
	end := "()"
	if r.Endpoint != nil {
		end = r.Endpoint.String()
	}
	if r.Direction == Inbound {
		return fmt.Sprintf("()-%s->%s", rel, end)
	}
	return fmt.Sprintf("%s-%s->()", end, rel)
}
