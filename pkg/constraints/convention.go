package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-graphbuilder/pkg/properties"
)

// ConventionConstraint checks property names against the naming
// conventions of pkg/properties. Required-looking properties must not hold
// an empty string. With RequireKnownConvention, names matching no
// convention are reported as warnings.
type ConventionConstraint struct {
	RequireKnownConvention bool
}

// Name returns the constraint name
func (c *ConventionConstraint) Name() string {
	return "ConventionConstraint"
}

// Validate checks every node and relationship candidate of src
func (c *ConventionConstraint) Validate(src Source) ([]Violation, error) {
	violations := make([]Violation, 0)

	for _, node := range src.Nodes() {
		key := src.Key(node)
		for _, v := range c.check(node.Properties) {
			v.Node = key
			v.Message = fmt.Sprintf("Node %q %s", key, v.Message)
			violations = append(violations, v)
		}
	}

	for i, rel := range src.Relationships() {
		for _, v := range c.check(rel.Properties) {
			idx := i
			v.Relationship = &idx
			v.Message = fmt.Sprintf("Relationship %d %s", i, v.Message)
			violations = append(violations, v)
		}
	}

	return violations, nil
}

func (c *ConventionConstraint) check(props map[string]any) []Violation {
	var violations []Violation
	classes := properties.ClassifyAll(props)

	for _, name := range classes.Required {
		if s, ok := props[name].(string); ok && s == "" {
			violations = append(violations, Violation{
				Type:       MissingProperty,
				Severity:   Error,
				Constraint: c.Name(),
				Message:    fmt.Sprintf("required property '%s' is empty", name),
				Details:    map[string]any{"property": name},
			})
		}
	}

	if c.RequireKnownConvention {
		for _, name := range classes.Unclassified {
			violations = append(violations, Violation{
				Type:       ConventionViolation,
				Severity:   Warning,
				Constraint: c.Name(),
				Message:    fmt.Sprintf("property '%s' follows no naming convention", name),
				Details:    map[string]any{"property": name},
			})
		}
	}

	return violations
}
