package constraints

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// Source is the read-only view of a set of built entities that constraints
// are checked against. manifest.Batch implements it.
type Source interface {
	Nodes() []*entity.Node
	Relationships() []*entity.RelationshipCandidate
	// Key names a node of the source, "" when unknown
	Key(n *entity.Node) string
}

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ParseSeverity parses a severity name, case-insensitively
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "info":
		return Info, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("unknown severity %q", s)
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	MissingProperty ViolationType = iota
	InvalidType
	OutOfRange
	CardinalityViolation
	UniquenessViolation
	ConventionViolation
)

func (vt ViolationType) String() string {
	switch vt {
	case MissingProperty:
		return "MissingProperty"
	case InvalidType:
		return "InvalidType"
	case OutOfRange:
		return "OutOfRange"
	case CardinalityViolation:
		return "CardinalityViolation"
	case UniquenessViolation:
		return "UniquenessViolation"
	case ConventionViolation:
		return "ConventionViolation"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation. Node holds the key of the
// offending node; Relationship the index of the offending candidate.
type Violation struct {
	Type         ViolationType
	Severity     Severity
	Node         string
	Relationship *int
	Constraint   string
	Message      string
	Details      map[string]any
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Constraint, v.Message)
}

// Constraint is the interface that all constraint types must implement
type Constraint interface {
	// Validate checks the constraint against src and returns the
	// violations found (empty if valid)
	Validate(src Source) ([]Violation, error)

	// Name returns a human-readable name for the constraint
	Name() string
}

// nodesWithLabel returns the nodes carrying label in source order. An empty
// label selects every node.
func nodesWithLabel(src Source, label string) []*entity.Node {
	var out []*entity.Node
	for _, n := range src.Nodes() {
		if label == "" || n.HasLabel(label) {
			out = append(out, n)
		}
	}
	return out
}
