package validation

import (
	"fmt"
	"reflect"
	"regexp"
)

// Limits are optional size and charset bounds a Builder can enforce on top of
// the structural invariants. A zero field disables that bound, so the zero
// Limits value enforces nothing. The predicates never apply Limits.
type Limits struct {
	MaxLabels            int
	MaxLabelLength       int
	MaxProperties        int
	MaxPropertyKeyLength int
	MaxValueDepth        int
	LabelPattern         *regexp.Regexp
}

// DefaultLabelPattern is the charset of the strict profile
var DefaultLabelPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// DefaultLimits returns the strict profile.
func DefaultLimits() Limits {
	return Limits{
		MaxLabels:            10,
		MaxLabelLength:       50,
		MaxProperties:        100,
		MaxPropertyKeyLength: 100,
		MaxValueDepth:        8,
		LabelPattern:         DefaultLabelPattern,
	}
}

// IsZero reports whether no bound is set
func (l Limits) IsZero() bool {
	return l.MaxLabels == 0 && l.MaxLabelLength == 0 && l.MaxProperties == 0 &&
		l.MaxPropertyKeyLength == 0 && l.MaxValueDepth == 0 && l.LabelPattern == nil
}

// CheckTags applies the label bounds to labels or relationship types. field is
// "labels" or "types".
func (l Limits) CheckTags(field string, tags []string) *ValidationError {
	if l.MaxLabels > 0 && len(tags) > l.MaxLabels {
		return limitError(field, tags).Detail("maximum %d allowed, got %d", l.MaxLabels, len(tags)).Build()
	}
	for i, tag := range tags {
		name := fmt.Sprintf("%s[%d]", field, i)
		if l.MaxLabelLength > 0 && len(tag) > l.MaxLabelLength {
			return limitError(name, tag).Detail("exceeds maximum length of %d characters", l.MaxLabelLength).Build()
		}
		if l.LabelPattern != nil && !l.LabelPattern.MatchString(tag) {
			return limitError(name, tag).Detail("does not match %s", l.LabelPattern).Build()
		}
	}
	return nil
}

// CheckProperties applies the property bounds. It assumes the mapping
// already passed the package-level CheckProperties.
func (l Limits) CheckProperties(props map[string]any) *ValidationError {
	if l.MaxProperties > 0 && len(props) > l.MaxProperties {
		return limitError("properties", len(props)).
			Detail("maximum %d properties allowed, got %d", l.MaxProperties, len(props)).
			Build()
	}
	for _, key := range sortedKeys(props) {
		if l.MaxPropertyKeyLength > 0 && len(key) > l.MaxPropertyKeyLength {
			return limitError("properties", key).
				Detail("key exceeds maximum length of %d characters", l.MaxPropertyKeyLength).
				Build()
		}
		if l.MaxValueDepth > 0 {
			if depth, ok := valueDepth(reflect.ValueOf(props[key])); ok && depth > l.MaxValueDepth {
				return limitError("properties."+key, props[key]).
					Detail("array nesting %d exceeds maximum %d", depth, l.MaxValueDepth).
					Build()
			}
		}
	}
	return nil
}

func limitError(field string, value any) *ErrorBuilder {
	return NewError("").Field(field, value).Cause(ErrLimitExceeded)
}
