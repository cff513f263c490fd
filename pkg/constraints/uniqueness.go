package constraints

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// UniqueScope defines the scope of uniqueness checking
type UniqueScope int

const (
	// ScopeGlobal means the property must be unique across all selected nodes
	ScopeGlobal UniqueScope = iota
	// ScopeLabel means the property must be unique within nodes sharing a label
	ScopeLabel
)

func (s UniqueScope) String() string {
	switch s {
	case ScopeGlobal:
		return "Global"
	case ScopeLabel:
		return "Label"
	default:
		return "Unknown"
	}
}

// UniquePropertyConstraint ensures a property value is unique across nodes,
// e.g. external ids or emails.
type UniquePropertyConstraint struct {
	// PropertyKey is the property that must be unique
	PropertyKey string

	// NodeLabel optionally restricts the constraint to nodes with this label
	NodeLabel string

	// Scope determines whether uniqueness is global or per label
	Scope UniqueScope
}

// Name returns a human-readable name for this constraint
func (c *UniquePropertyConstraint) Name() string {
	if c.NodeLabel != "" {
		return fmt.Sprintf("Unique(%s.%s)", c.NodeLabel, c.PropertyKey)
	}
	if c.Scope == ScopeGlobal {
		return fmt.Sprintf("UniqueGlobal(%s)", c.PropertyKey)
	}
	return fmt.Sprintf("UniquePerLabel(%s)", c.PropertyKey)
}

// Validate checks that the property is unique according to the constraint scope
func (c *UniquePropertyConstraint) Validate(src Source) ([]Violation, error) {
	nodes := nodesWithLabel(src, c.NodeLabel)

	if c.Scope == ScopeGlobal || c.NodeLabel != "" {
		return c.findDuplicates(src, nodes, c.NodeLabel), nil
	}

	// per label: group by every label, keeping first-seen order
	var labels []string
	groups := make(map[string][]int)
	for i, n := range nodes {
		for _, label := range n.Labels {
			if _, ok := groups[label]; !ok {
				labels = append(labels, label)
			}
			groups[label] = append(groups[label], i)
		}
	}

	var violations []Violation
	for _, label := range labels {
		subset := make([]*entity.Node, 0, len(groups[label]))
		for _, i := range groups[label] {
			subset = append(subset, nodes[i])
		}
		violations = append(violations, c.findDuplicates(src, subset, label)...)
	}
	return violations, nil
}

// findDuplicates reports every node after the first that carries an already
// seen value
func (c *UniquePropertyConstraint) findDuplicates(src Source, nodes []*entity.Node, label string) []Violation {
	var violations []Violation
	firstSeen := make(map[string]string)

	for _, node := range nodes {
		value, exists := node.GetProperty(c.PropertyKey)
		if !exists {
			continue
		}

		key := src.Key(node)
		valueKey := uniqueKey(value)
		first, dup := firstSeen[valueKey]
		if !dup {
			firstSeen[valueKey] = key
			continue
		}

		violations = append(violations, Violation{
			Type:       UniquenessViolation,
			Severity:   Error,
			Node:       key,
			Constraint: c.Name(),
			Message: fmt.Sprintf("Duplicate value '%v' for property '%s' (also on node %q)",
				value, c.PropertyKey, first),
			Details: map[string]any{
				"property":   c.PropertyKey,
				"label":      label,
				"value":      value,
				"first_node": first,
			},
		})
	}

	return violations
}

// uniqueKey renders a property value so that two values share a key only
// when they are the same kind, element by element. Strings are quoted so
// array elements cannot run together.
func uniqueKey(v any) string {
	var b strings.Builder
	writeUniqueKey(&b, reflect.ValueOf(v))
	return b.String()
}

func writeUniqueKey(b *strings.Builder, v reflect.Value) {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || v.Kind() == reflect.Interface {
		b.WriteString("nil")
		return
	}
	switch kind := KindOf(v.Interface()); kind {
	case StringKind:
		fmt.Fprintf(b, "%q", v.String())
	case ArrayKind:
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			writeUniqueKey(b, v.Index(i))
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "%s:%v", kind, v.Interface())
	}
}
