package validation

import (
	"fmt"
	"reflect"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// IsNode reports whether value is structurally a node: a non-empty,
// duplicate-free sequence of non-empty labels plus a property mapping with
// non-empty keys and supported values.
//
// Accepted shapes are entity.Node, *entity.Node and a generic map with
// "labels" and "properties" entries, as produced by decoding a node from
// JSON or YAML. Identity is never consulted, so deep clones validate.
func IsNode(value any) bool {
	return CheckNodeShape(value) == nil
}

// IsRelationshipCandidate reports whether value is structurally a
// relationship candidate: non-empty types, valid properties, a direction of
// exactly "outbound" or "inbound" and an endpoint that satisfies IsNode.
func IsRelationshipCandidate(value any) bool {
	return CheckRelationshipShape(value) == nil
}

// CheckNodeShape is IsNode with the reason for rejection.
func CheckNodeShape(value any) (err *ValidationError) {
	defer func() {
		if r := recover(); r != nil {
			err = fieldError("", value, fmt.Errorf("%w: %v", ErrUnrecognizedShape, r))
		}
	}()

	switch v := value.(type) {
	case entity.Node:
		return checkNode(v.Labels, v.Properties)
	case *entity.Node:
		if v == nil {
			return fieldError("", value, ErrUnrecognizedShape)
		}
		return checkNode(v.Labels, v.Properties)
	}

	m, ok := asMap(value)
	if !ok {
		return fieldError("", value, ErrUnrecognizedShape)
	}
	labels, ok := asStrings(m["labels"])
	if !ok {
		return fieldError("labels", m["labels"], missingOr(m["labels"], ErrEmptyLabels, ErrInvalidLabel))
	}
	props, ok := asProperties(m["properties"])
	if !ok {
		return fieldError("properties", m["properties"], ErrUnrecognizedShape)
	}
	return checkNode(labels, props)
}

// CheckRelationshipShape is IsRelationshipCandidate with the reason for rejection.
func CheckRelationshipShape(value any) (err *ValidationError) {
	defer func() {
		if r := recover(); r != nil {
			err = fieldError("", value, fmt.Errorf("%w: %v", ErrUnrecognizedShape, r))
		}
	}()

	switch v := value.(type) {
	case entity.RelationshipCandidate:
		return checkRelationship(v.Types, v.Properties, v.Direction, v.Endpoint)
	case *entity.RelationshipCandidate:
		if v == nil {
			return fieldError("", value, ErrUnrecognizedShape)
		}
		return checkRelationship(v.Types, v.Properties, v.Direction, v.Endpoint)
	}

	m, ok := asMap(value)
	if !ok {
		return fieldError("", value, ErrUnrecognizedShape)
	}
	types, ok := asStrings(m["types"])
	if !ok {
		return fieldError("types", m["types"], missingOr(m["types"], ErrEmptyTypes, ErrInvalidType))
	}
	props, ok := asProperties(m["properties"])
	if !ok {
		return fieldError("properties", m["properties"], ErrUnrecognizedShape)
	}

	var direction entity.Direction
	switch d := m["direction"].(type) {
	case entity.Direction:
		direction = d
	case string:
		direction = entity.Direction(d)
	default:
		return fieldError("direction", m["direction"], ErrInvalidDirection)
	}

	if err := checkTypesAndProps(types, props); err != nil {
		return err
	}
	if err := CheckDirection(direction); err != nil {
		return err
	}
	if err := CheckNodeShape(m["endpoint"]); err != nil {
		return NewError("").Field("endpoint", m["endpoint"]).Cause(ErrInvalidEndpoint).Detail("%v", err).Build()
	}
	return nil
}

func checkNode(labels []string, props map[string]any) *ValidationError {
	if err := CheckLabels(labels); err != nil {
		return err
	}
	if err := CheckDistinct("labels", labels); err != nil {
		return err
	}
	return CheckProperties(props)
}

func checkRelationship(types []string, props map[string]any, d entity.Direction, endpoint *entity.Node) *ValidationError {
	if err := checkTypesAndProps(types, props); err != nil {
		return err
	}
	if err := CheckDirection(d); err != nil {
		return err
	}
	return CheckEndpoint(endpoint)
}

func checkTypesAndProps(types []string, props map[string]any) *ValidationError {
	if err := CheckTypes(types); err != nil {
		return err
	}
	if err := CheckDistinct("types", types); err != nil {
		return err
	}
	return CheckProperties(props)
}

// asMap accepts any map keyed by strings, e.g. map[string]any from
// encoding/json or yaml.v3.
func asMap(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func asStrings(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// asProperties treats an absent or nil property entry as an empty mapping.
func asProperties(value any) (map[string]any, bool) {
	if value == nil {
		return nil, true
	}
	return asMap(value)
}

func missingOr(value any, errMissing, errInvalid error) error {
	if value == nil {
		return errMissing
	}
	return errInvalid
}
