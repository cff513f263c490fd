package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// CardinalityConstraint bounds the number of relationship candidates that
// point at each node with NodeLabel.
type CardinalityConstraint struct {
	NodeLabel        string           // Label to apply constraint to
	RelationshipType string           // Type of candidate (empty = any type)
	Direction        entity.Direction // Direction to count (empty = both)
	Min              int              // Minimum number of candidates (0 = optional)
	Max              int              // Maximum number of candidates (0 = unlimited)
}

// Name returns the constraint name
func (cc *CardinalityConstraint) Name() string {
	relType := cc.RelationshipType
	if relType == "" {
		relType = "*"
	}
	direction := string(cc.Direction)
	if direction == "" {
		direction = "any"
	}
	return fmt.Sprintf("CardinalityConstraint(%s,%s,%s,[%d,%d])",
		cc.NodeLabel, relType, direction, cc.Min, cc.Max)
}

// Validate checks the cardinality constraint against all nodes with the target label
func (cc *CardinalityConstraint) Validate(src Source) ([]Violation, error) {
	if cc.Direction != "" && !cc.Direction.Valid() {
		return nil, fmt.Errorf("%s: unknown direction %q", cc.Name(), cc.Direction)
	}
	if cc.Max > 0 && cc.Min > cc.Max {
		return nil, fmt.Errorf("%s: %w", cc.Name(), ErrInvalidRange)
	}

	counts := cc.countCandidates(src.Relationships())
	violations := make([]Violation, 0)

	for _, node := range nodesWithLabel(src, cc.NodeLabel) {
		count := counts[node]
		key := src.Key(node)

		if cc.Min > 0 && count < cc.Min {
			violations = append(violations, cc.violation(key, count, "min", cc.Min))
		}
		if cc.Max > 0 && count > cc.Max {
			violations = append(violations, cc.violation(key, count, "max", cc.Max))
		}
	}

	return violations, nil
}

// countCandidates counts matching candidates per endpoint, by identity
func (cc *CardinalityConstraint) countCandidates(rels []*entity.RelationshipCandidate) map[*entity.Node]int {
	counts := make(map[*entity.Node]int)
	for _, rel := range rels {
		if cc.RelationshipType != "" && !rel.HasType(cc.RelationshipType) {
			continue
		}
		if cc.Direction != "" && rel.Direction != cc.Direction {
			continue
		}
		counts[rel.Endpoint]++
	}
	return counts
}

func (cc *CardinalityConstraint) violation(key string, count int, bound string, limit int) Violation {
	word := "minimum"
	if bound == "max" {
		word = "maximum"
	}
	return Violation{
		Type:       CardinalityViolation,
		Severity:   Error,
		Node:       key,
		Constraint: cc.Name(),
		Message: fmt.Sprintf("Node %q has %d relationship candidate(s) of type '%s', %s is %d",
			key, count, cc.RelationshipType, word, limit),
		Details: map[string]any{
			"label":             cc.NodeLabel,
			"relationship_type": cc.RelationshipType,
			"direction":         string(cc.Direction),
			"count":             count,
			bound:               limit,
		},
	}
}
