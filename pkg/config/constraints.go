package config

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-graphbuilder/pkg/constraints"
	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
	"github.com/dd0wney/cluso-graphbuilder/pkg/validation"
)

// Constraint kinds accepted in ConstraintConfig.Kind
const (
	KindProperty    = "property"
	KindUnique      = "unique"
	KindCardinality = "cardinality"
	KindConvention  = "convention"
)

var (
	constraintKinds = []string{KindProperty, KindUnique, KindCardinality, KindConvention}
	valueKinds      = []string{"", "string", "bool", "integer", "float", "array"}
	uniqueScopes    = []string{"", "global", "label"}
)

// ConstraintConfig declares one constraint. Which fields apply depends on
// Kind.
type ConstraintConfig struct {
	Kind     string `yaml:"kind"`
	Label    string `yaml:"label"`
	Property string `yaml:"property"`

	// property
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Min      *float64 `yaml:"min"`
	Max      *float64 `yaml:"max"`

	// unique
	Scope string `yaml:"scope"`

	// cardinality
	RelationshipType string `yaml:"relationship_type"`
	Direction        string `yaml:"direction"`
	MinCount         int    `yaml:"min_count"`
	MaxCount         int    `yaml:"max_count"`

	// convention
	RequireKnownConvention bool `yaml:"require_known_convention"`
}

func (cc *ConstraintConfig) validate(cv *validation.ConfigValidator, field string) {
	cv.OneOf(field+".kind", cc.Kind, constraintKinds)

	switch cc.Kind {
	case KindProperty:
		cv.Required(field+".label", cc.Label).
			Required(field+".property", cc.Property).
			OneOf(field+".type", cc.Type, valueKinds)
		cv.When(cc.Min != nil && cc.Max != nil, func(cv *validation.ConfigValidator) {
			cv.Custom(field+".min", func() error {
				if *cc.Min > *cc.Max {
					return constraints.ErrInvalidRange
				}
				return nil
			})
		})
	case KindUnique:
		cv.Required(field+".property", cc.Property).
			OneOf(field+".scope", strings.ToLower(cc.Scope), uniqueScopes)
	case KindCardinality:
		cv.Required(field+".label", cc.Label).
			NonNegative(field+".min_count", cc.MinCount).
			NonNegative(field+".max_count", cc.MaxCount)
		cv.When(cc.Direction != "", func(cv *validation.ConfigValidator) {
			cv.Custom(field+".direction", func() error {
				_, err := entity.ParseDirection(cc.Direction)
				return err
			})
		})
		cv.When(cc.MaxCount > 0, func(cv *validation.ConfigValidator) {
			cv.Custom(field+".min_count", func() error {
				if cc.MinCount > cc.MaxCount {
					return constraints.ErrInvalidRange
				}
				return nil
			})
		})
	}
}

// Build turns the declaration into a constraint. It assumes validate passed.
func (cc *ConstraintConfig) Build() (constraints.Constraint, error) {
	switch cc.Kind {
	case KindProperty:
		return &constraints.PropertyConstraint{
			NodeLabel:    cc.Label,
			PropertyName: cc.Property,
			Type:         constraints.ValueKind(cc.Type),
			Required:     cc.Required,
			Min:          cc.Min,
			Max:          cc.Max,
		}, nil
	case KindUnique:
		scope := constraints.ScopeGlobal
		if strings.EqualFold(cc.Scope, "label") {
			scope = constraints.ScopeLabel
		}
		return &constraints.UniquePropertyConstraint{
			PropertyKey: cc.Property,
			NodeLabel:   cc.Label,
			Scope:       scope,
		}, nil
	case KindCardinality:
		return &constraints.CardinalityConstraint{
			NodeLabel:        cc.Label,
			RelationshipType: cc.RelationshipType,
			Direction:        entity.Direction(cc.Direction),
			Min:              cc.MinCount,
			Max:              cc.MaxCount,
		}, nil
	case KindConvention:
		return &constraints.ConventionConstraint{
			RequireKnownConvention: cc.RequireKnownConvention,
		}, nil
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", cc.Kind)
	}
}

// BuildConstraints returns a constraints.Validator holding every declared
// constraint, in file order.
func (c *Config) BuildConstraints() (*constraints.Validator, error) {
	v := constraints.NewValidator()
	for i := range c.Constraints {
		constraint, err := c.Constraints[i].Build()
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		v.AddConstraint(constraint)
	}
	return v, nil
}
