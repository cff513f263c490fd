package constraints

import (
	"fmt"
	"time"
)

// ValidationResult contains the results of checking a source against
// constraints
type ValidationResult struct {
	Valid      bool        // True if no Error severity violation was found
	Violations []Violation // List of all violations
	CheckedAt  time.Time   // When validation was performed
}

// BySeverity returns violations filtered by severity level
func (vr *ValidationResult) BySeverity(severity Severity) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range vr.Violations {
		if v.Severity == severity {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// ByType returns violations filtered by type
func (vr *ValidationResult) ByType(violationType ViolationType) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range vr.Violations {
		if v.Type == violationType {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// CountBySeverity counts violations per severity name
func (vr *ValidationResult) CountBySeverity() map[string]int {
	counts := make(map[string]int)
	for _, v := range vr.Violations {
		counts[v.Severity.String()]++
	}
	return counts
}

// Validator manages a set of constraints and checks sources against them
type Validator struct {
	constraints []Constraint
}

// NewValidator creates a new empty validator
func NewValidator() *Validator {
	return &Validator{
		constraints: make([]Constraint, 0),
	}
}

// AddConstraint adds a constraint to the validator
func (v *Validator) AddConstraint(constraint Constraint) {
	v.constraints = append(v.constraints, constraint)
}

// AddConstraints adds multiple constraints to the validator
func (v *Validator) AddConstraints(constraints []Constraint) {
	v.constraints = append(v.constraints, constraints...)
}

// Constraints returns all constraints in the validator
func (v *Validator) Constraints() []Constraint {
	return v.constraints
}

// Validate runs all constraints against src. Warnings and infos are
// reported but do not make the result invalid.
func (v *Validator) Validate(src Source) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:      true,
		Violations: make([]Violation, 0),
		CheckedAt:  time.Now(),
	}

	for _, constraint := range v.constraints {
		violations, err := constraint.Validate(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", constraint.Name(), err)
		}

		for _, violation := range violations {
			if violation.Severity == Error {
				result.Valid = false
			}
		}
		result.Violations = append(result.Violations, violations...)
	}

	return result, nil
}
