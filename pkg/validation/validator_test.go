package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// TestValidateNodeRequest tests node request validation
func TestValidateNodeRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       *NodeRequest
		wantCause error
		wantField string
	}{
		{
			name: "Valid node request",
			req: &NodeRequest{
				Labels:     []string{"PERSON"},
				Properties: map[string]any{"FIRST_NAME": "Matvey", "DOB": []int{2018, 10, 21}},
			},
		},
		{
			name: "Any label charset is accepted",
			req:  &NodeRequest{Labels: []string{"Person<script>", "ünïcödé"}},
		},
		{
			name: "Empty properties - valid",
			req:  &NodeRequest{Labels: []string{"PERSON"}, Properties: map[string]any{}},
		},
		{
			name:      "Nil request",
			req:       nil,
			wantCause: ErrUnrecognizedShape,
		},
		{
			name:      "Nil labels",
			req:       &NodeRequest{},
			wantCause: ErrEmptyLabels,
			wantField: "labels",
		},
		{
			name:      "Empty labels",
			req:       &NodeRequest{Labels: []string{}},
			wantCause: ErrEmptyLabels,
			wantField: "labels",
		},
		{
			name:      "Empty label entry",
			req:       &NodeRequest{Labels: []string{"PERSON", ""}},
			wantCause: ErrInvalidLabel,
			wantField: "labels[1]",
		},
		{
			name:      "Empty property key",
			req:       &NodeRequest{Labels: []string{"PERSON"}, Properties: map[string]any{"": "x"}},
			wantCause: ErrInvalidPropertyKey,
			wantField: "properties",
		},
		{
			name:      "Nested map value",
			req:       &NodeRequest{Labels: []string{"PERSON"}, Properties: map[string]any{"address": map[string]any{"city": "Oslo"}}},
			wantCause: ErrInvalidPropertyValue,
			wantField: "properties.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeRequest(tt.req)
			checkRequestError(t, err, tt.wantCause, tt.wantField)
		})
	}
}

func TestValidateRelationshipRequest(t *testing.T) {
	endpoint := &entity.Node{Labels: []string{"PERSON"}}

	tests := []struct {
		name      string
		req       *RelationshipRequest
		wantCause error
		wantField string
	}{
		{
			name: "Valid outbound",
			req: &RelationshipRequest{
				Types:      []string{"REL_TYPE"},
				Properties: map[string]any{"REQUIREDPROP": 1, "optionalProp": 2, "_privateProp": 3},
				Direction:  entity.Outbound,
				Endpoint:   endpoint,
			},
		},
		{
			name: "Valid inbound",
			req:  &RelationshipRequest{Types: []string{"KNOWS"}, Direction: entity.Inbound, Endpoint: endpoint},
		},
		{
			name:      "No types",
			req:       &RelationshipRequest{Direction: entity.Inbound, Endpoint: endpoint},
			wantCause: ErrEmptyTypes,
			wantField: "types",
		},
		{
			name:      "Empty type entry",
			req:       &RelationshipRequest{Types: []string{""}, Direction: entity.Inbound, Endpoint: endpoint},
			wantCause: ErrInvalidType,
			wantField: "types[0]",
		},
		{
			name:      "Missing direction",
			req:       &RelationshipRequest{Types: []string{"T"}, Endpoint: endpoint},
			wantCause: ErrInvalidDirection,
			wantField: "direction",
		},
		{
			name:      "Upper-case direction is not coerced",
			req:       &RelationshipRequest{Types: []string{"T"}, Direction: "OUTBOUND", Endpoint: endpoint},
			wantCause: ErrInvalidDirection,
			wantField: "direction",
		},
		{
			name:      "Nil endpoint",
			req:       &RelationshipRequest{Types: []string{"T"}, Direction: entity.Outbound},
			wantCause: ErrInvalidEndpoint,
			wantField: "endpoint",
		},
		{
			name:      "Endpoint without labels",
			req:       &RelationshipRequest{Types: []string{"T"}, Direction: entity.Outbound, Endpoint: &entity.Node{}},
			wantCause: ErrInvalidEndpoint,
			wantField: "endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelationshipRequest(tt.req)
			checkRequestError(t, err, tt.wantCause, tt.wantField)
		})
	}
}

func checkRequestError(t *testing.T, err error, wantCause error, wantField string) {
	t.Helper()

	if wantCause == nil {
		if err != nil {
			t.Fatalf("Expected no error but got: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("Expected %v but got nil", wantCause)
	}
	if !errors.Is(err, wantCause) {
		t.Errorf("Expected cause %v, got %v", wantCause, err)
	}
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if wantField != "" && verr.Field != wantField {
		t.Errorf("Field = %q, want %q", verr.Field, wantField)
	}
}

func TestCheckValue(t *testing.T) {
	type named string

	tests := []struct {
		name  string
		value any
		valid bool
	}{
		{"string", "x", true},
		{"named string", named("x"), true},
		{"bool", false, true},
		{"int", 1, true},
		{"int8", int8(-1), true},
		{"uint64", uint64(1), true},
		{"float32", float32(1.5), true},
		{"byte array", [3]byte{1, 2, 3}, true},
		{"bytes", []byte("raw"), false},
		{"nested bytes", []any{[]byte("raw")}, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity in array", []float64{1, math.Inf(-1)}, false},
		{"date triple", []int{2018, 10, 21}, true},
		{"fixed array", [3]int{2018, 10, 21}, true},
		{"empty slice", []any{}, true},
		{"mixed nested", []any{"a", []any{1, []float64{2}}}, true},
		{"nil", nil, false},
		{"nil slice", []string(nil), false},
		{"map", map[string]int{"a": 1}, false},
		{"struct", struct{ A int }{1}, false},
		{"pointer", new(string), false},
		{"func", func() {}, false},
		{"uintptr", uintptr(1), false},
		{"complex", complex(1, 2), false},
		{"slice of maps", []map[string]any{{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckValue("k", tt.value)
			if tt.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected %T to be rejected", tt.value)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"B", "A", "B", "C", "A"})
	want := []string{"B", "A", "C"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Dedupe() = %v, want %v", got, want)
	}
}

func TestValidationErrorFormatting(t *testing.T) {
	err := NewError("MakeNode").Node().Field("labels", []string{}).Cause(ErrEmptyLabels).Err()

	msg := err.Error()
	for _, part := range []string{"MakeNode", "node", "labels", "at least one label", "[]string{}"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, missing %q", msg, part)
		}
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false")
	}
	if !IsValidationError(errors.Join(errors.New("wrapped"), err)) {
		t.Error("IsValidationError() should see through wrapping")
	}
	if IsValidationError(errors.New("plain")) {
		t.Error("IsValidationError() = true for plain error")
	}

	verr := NewError("MakeRelationshipCandidate").Relationship().From(fieldError("direction", "up", ErrInvalidDirection)).Build()
	if verr.Op != "MakeRelationshipCandidate" || verr.Entity != "relationship" || verr.Field != "direction" {
		t.Errorf("From() = %+v", verr)
	}
	if !errors.Is(verr, ErrInvalidDirection) {
		t.Errorf("From() lost the cause: %v", verr)
	}

	long := NewError("op").Field("v", strings.Repeat("x", 500)).Cause(ErrInvalidLabel).Err().Error()
	if !strings.Contains(long, "...") {
		t.Error("long values should be truncated")
	}

	accented := NewError("op").Field("v", strings.Repeat("é", 100)).Cause(ErrInvalidLabel).Err().Error()
	if !strings.Contains(accented, "...") {
		t.Error("long multibyte values should be truncated")
	}
	if !utf8.ValidString(accented) {
		t.Errorf("truncation split a rune: %q", accented)
	}
}

func TestCheckValueSelfReference(t *testing.T) {
	cyclic := []any{1}
	cyclic[0] = cyclic

	err := CheckValue("loop", cyclic)
	if err == nil {
		t.Fatal("Expected self-referencing slice to be rejected")
	}
	if !errors.Is(err, ErrInvalidPropertyValue) {
		t.Errorf("CheckValue() = %v, want ErrInvalidPropertyValue", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "nested deeper than") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestCheckValueNestingCap(t *testing.T) {
	var v any = "leaf"
	for i := 0; i < MaxValueNesting; i++ {
		v = []any{v}
	}
	if err := CheckValue("deep", v); err != nil {
		t.Errorf("nesting of %d should be accepted, got %v", MaxValueNesting, err)
	}

	v = []any{v}
	if err := CheckValue("deeper", v); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Errorf("nesting of %d should be rejected, got %v", MaxValueNesting+1, err)
	}
}
