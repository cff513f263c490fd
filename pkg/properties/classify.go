// Package properties classifies property names by naming convention:
// UPPER_SNAKE names are required, lowerCamel names optional and names with a
// leading underscore private. The Builder accepts every name; this package is
// a separate pass for collaborators that need the distinction.
package properties

import (
	"sort"
	"unicode"
)

// Kind is the convention a property name follows
type Kind int

const (
	Unclassified Kind = iota
	Required
	Optional
	Private
)

func (k Kind) String() string {
	switch k {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Private:
		return "private"
	default:
		return "unclassified"
	}
}

// Classify returns the Kind of a single property name.
func Classify(name string) Kind {
	if name == "" {
		return Unclassified
	}
	if name[0] == '_' {
		if len(name) > 1 {
			return Private
		}
		return Unclassified
	}
	if isUpperSnake(name) {
		return Required
	}
	if isLowerCamel(name) {
		return Optional
	}
	return Unclassified
}

// isUpperSnake: upper-case letters, digits and underscores with at least one letter
func isUpperSnake(name string) bool {
	hasLetter := false
	for _, r := range name {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r), r == '_':
		default:
			return false
		}
	}
	return hasLetter
}

// isLowerCamel: a lower-case letter followed by letters and digits
func isLowerCamel(name string) bool {
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLower(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Classification groups the names of a property mapping by Kind. Each list is
// sorted.
type Classification struct {
	Required     []string `json:"required,omitempty"`
	Optional     []string `json:"optional,omitempty"`
	Private      []string `json:"private,omitempty"`
	Unclassified []string `json:"unclassified,omitempty"`
}

// ClassifyAll classifies every name in props.
func ClassifyAll(props map[string]any) Classification {
	var c Classification
	for name := range props {
		switch Classify(name) {
		case Required:
			c.Required = append(c.Required, name)
		case Optional:
			c.Optional = append(c.Optional, name)
		case Private:
			c.Private = append(c.Private, name)
		default:
			c.Unclassified = append(c.Unclassified, name)
		}
	}
	sort.Strings(c.Required)
	sort.Strings(c.Optional)
	sort.Strings(c.Private)
	sort.Strings(c.Unclassified)
	return c
}

// Public returns props without its private entries, e.g. before handing an
// entity to a serializer that must not expose them.
func Public(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if Classify(k) != Private {
			out[k] = v
		}
	}
	return out
}
