package validation

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// CheckLabels validates a node label sequence: at least one entry, every
// entry a non-empty string.
func CheckLabels(labels []string) *ValidationError {
	return checkTags("labels", labels, ErrEmptyLabels, ErrInvalidLabel)
}

// CheckTypes validates a relationship type sequence.
func CheckTypes(types []string) *ValidationError {
	return checkTags("types", types, ErrEmptyTypes, ErrInvalidType)
}

func checkTags(field string, tags []string, errEmpty, errInvalid error) *ValidationError {
	if len(tags) == 0 {
		return fieldError(field, tags, errEmpty)
	}
	for i, tag := range tags {
		if tag == "" {
			return fieldError(fmt.Sprintf("%s[%d]", field, i), tag, errInvalid)
		}
	}
	return nil
}

// CheckDistinct reports the first repeated entry of an ordered set.
func CheckDistinct(field string, values []string) *ValidationError {
	for i := 1; i < len(values); i++ {
		if slices.Contains(values[:i], values[i]) {
			return fieldError(fmt.Sprintf("%s[%d]", field, i), values[i], ErrDuplicateLabel)
		}
	}
	return nil
}

// Dedupe returns values with repeated entries removed, first occurrence wins.
func Dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// CheckPropertyKey validates a property name. Naming conventions such as
// upper-case or leading underscore are not enforced here.
func CheckPropertyKey(key string) *ValidationError {
	if key == "" {
		return fieldError("properties", key, ErrInvalidPropertyKey)
	}
	return nil
}

// CheckProperties validates every key and value of a property mapping. A nil
// or empty mapping is valid. Keys are visited in sorted order so the reported
// error is deterministic.
func CheckProperties(props map[string]any) *ValidationError {
	for _, key := range sortedKeys(props) {
		if err := CheckPropertyKey(key); err != nil {
			return err
		}
		if err := CheckValue(key, props[key]); err != nil {
			return err
		}
	}
	return nil
}

// MaxValueNesting caps how deep valueDepth descends into nested arrays.
// Values nested deeper, including self-referencing slices, are rejected.
const MaxValueNesting = 64

// CheckValue validates a single property value: a finite scalar (string,
// bool, integer, float) or an array/slice of values nested up to
// MaxValueNesting levels. Byte slices are rejected since they would not
// survive the JSON codec as arrays.
func CheckValue(key string, value any) *ValidationError {
	if _, ok := valueDepth(reflect.ValueOf(value)); !ok {
		return fieldError("properties."+key, value, ErrInvalidPropertyValue)
	}
	return nil
}

// valueDepth walks a property value and returns its array nesting depth
// (0 for scalars) and whether every leaf is a supported scalar.
func valueDepth(v reflect.Value) (int, bool) {
	return nestedDepth(v, 0)
}

func nestedDepth(v reflect.Value, level int) (int, bool) {
	if level > MaxValueNesting {
		return 0, false
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return 0, true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return 0, !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return 0, false
		}
		fallthrough
	case reflect.Array:
		depth := 1
		for i := 0; i < v.Len(); i++ {
			d, ok := nestedDepth(v.Index(i), level+1)
			if !ok {
				return 0, false
			}
			depth = max(depth, d+1)
		}
		return depth, true
	default:
		return 0, false
	}
}

// CheckDirection accepts exactly entity.Outbound or entity.Inbound.
func CheckDirection(d entity.Direction) *ValidationError {
	if !d.Valid() {
		return fieldError("direction", string(d), ErrInvalidDirection)
	}
	return nil
}

// CheckEndpoint validates that a relationship endpoint is a valid node.
func CheckEndpoint(n *entity.Node) *ValidationError {
	if n == nil {
		return fieldError("endpoint", nil, ErrInvalidEndpoint)
	}
	if err := checkNode(n.Labels, n.Properties); err != nil {
		return NewError("").Field("endpoint", n).Cause(ErrInvalidEndpoint).Detail("%v", err).Build()
	}
	return nil
}

func sortedKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
