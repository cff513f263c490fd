package constraints

import (
	"errors"
	"fmt"
	"reflect"
)

// ValueKind is the coarse type of a property value
type ValueKind string

const (
	AnyKind     ValueKind = ""
	StringKind  ValueKind = "string"
	BoolKind    ValueKind = "bool"
	IntegerKind ValueKind = "integer"
	FloatKind   ValueKind = "float"
	ArrayKind   ValueKind = "array"
)

// ErrInvalidRange is returned when Min is above Max
var ErrInvalidRange = errors.New("minimum is above maximum")

// KindOf classifies a property value
func KindOf(v any) ValueKind {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String:
		return StringKind
	case reflect.Bool:
		return BoolKind
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return IntegerKind
	case reflect.Float32, reflect.Float64:
		return FloatKind
	case reflect.Slice, reflect.Array:
		return ArrayKind
	default:
		return AnyKind
	}
}

// PropertyConstraint validates node properties
type PropertyConstraint struct {
	NodeLabel    string    // Label to apply constraint to
	PropertyName string    // Name of the property
	Type         ValueKind // Expected kind (AnyKind = any)
	Required     bool      // Whether property must exist
	Min          *float64  // Minimum value (for integer/float)
	Max          *float64  // Maximum value (for integer/float)
}

// Name returns the constraint name
func (pc *PropertyConstraint) Name() string {
	return fmt.Sprintf("PropertyConstraint(%s.%s)", pc.NodeLabel, pc.PropertyName)
}

// Validate checks the property constraint against all nodes with the target label
func (pc *PropertyConstraint) Validate(src Source) ([]Violation, error) {
	if pc.Min != nil && pc.Max != nil && *pc.Min > *pc.Max {
		return nil, fmt.Errorf("%s: %w", pc.Name(), ErrInvalidRange)
	}

	violations := make([]Violation, 0)

	for _, node := range nodesWithLabel(src, pc.NodeLabel) {
		key := src.Key(node)
		value, exists := node.GetProperty(pc.PropertyName)

		if !exists {
			if pc.Required {
				violations = append(violations, Violation{
					Type:       MissingProperty,
					Severity:   Error,
					Node:       key,
					Constraint: pc.Name(),
					Message:    fmt.Sprintf("Node %q missing required property '%s'", key, pc.PropertyName),
					Details: map[string]any{
						"label":    pc.NodeLabel,
						"property": pc.PropertyName,
					},
				})
			}
			continue
		}

		kind := KindOf(value)
		if !pc.kindMatches(kind) {
			violations = append(violations, Violation{
				Type:       InvalidType,
				Severity:   Error,
				Node:       key,
				Constraint: pc.Name(),
				Message:    fmt.Sprintf("Node %q property '%s' has wrong type", key, pc.PropertyName),
				Details: map[string]any{
					"label":         pc.NodeLabel,
					"property":      pc.PropertyName,
					"actual_type":   string(kind),
					"expected_type": string(pc.Type),
				},
			})
			continue // Don't check range if type is wrong
		}

		if v, ok := pc.outOfRange(value); ok {
			violations = append(violations, v.at(key, pc))
		}
	}

	return violations, nil
}

// kindMatches accepts integers where floats are expected
func (pc *PropertyConstraint) kindMatches(kind ValueKind) bool {
	if pc.Type == AnyKind || pc.Type == kind {
		return true
	}
	return pc.Type == FloatKind && kind == IntegerKind
}

type rangeMiss struct {
	value float64
	bound string
	limit float64
}

func (r rangeMiss) at(key string, pc *PropertyConstraint) Violation {
	word := "below minimum"
	if r.bound == "max" {
		word = "above maximum"
	}
	return Violation{
		Type:       OutOfRange,
		Severity:   Error,
		Node:       key,
		Constraint: pc.Name(),
		Message: fmt.Sprintf("Node %q property '%s' value %g is %s %g",
			key, pc.PropertyName, r.value, word, r.limit),
		Details: map[string]any{
			"label":    pc.NodeLabel,
			"property": pc.PropertyName,
			"value":    r.value,
			r.bound:    r.limit,
		},
	}
}

// outOfRange checks numeric values against Min and Max. Non-numeric values
// are never out of range.
func (pc *PropertyConstraint) outOfRange(value any) (rangeMiss, bool) {
	if pc.Min == nil && pc.Max == nil {
		return rangeMiss{}, false
	}
	n, ok := asFloat(value)
	if !ok {
		return rangeMiss{}, false
	}
	if pc.Min != nil && n < *pc.Min {
		return rangeMiss{value: n, bound: "min", limit: *pc.Min}, true
	}
	if pc.Max != nil && n > *pc.Max {
		return rangeMiss{value: n, bound: "max", limit: *pc.Max}, true
	}
	return rangeMiss{}, false
}

func asFloat(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch KindOf(value) {
	case IntegerKind:
		if rv.CanInt() {
			return float64(rv.Int()), true
		}
		return float64(rv.Uint()), true
	case FloatKind:
		return rv.Float(), true
	default:
		return 0, false
	}
}
