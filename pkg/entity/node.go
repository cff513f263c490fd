package entity

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// Node is a labeled graph vertex descriptor. Nodes are immutable once built;
// derive a changed node by cloning and rebuilding it.
type Node struct {
	Labels     []string       `json:"labels" yaml:"labels"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// HasLabel checks if node has a specific label
func (n *Node) HasLabel(label string) bool {
	return slices.Contains(n.Labels, label)
}

// GetProperty gets a property value
func (n *Node) GetProperty(key string) (any, bool) {
	val, ok := n.Properties[key]
	return val, ok
}

// Clone returns a deep copy of the node that shares no references with n
func (n *Node) Clone() (*Node, error) {
	if n == nil {
		return nil, nil
	}
	var out Node
	if err := deepcopy.Copy(&out, *n); err != nil {
		return nil, fmt.Errorf("clone node: %w", err)
	}
	return &out, nil
}

func (n *Node) String() string {
	return fmt.Sprintf("(:%s %v)", strings.Join(n.Labels, ":"), n.Properties)
}
