package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
)

func createLargeMap(size int) map[string]any {
	m := make(map[string]any, size)
	for i := 0; i < size; i++ {
		m[fmt.Sprintf("prop%d", i)] = i
	}
	return m
}

func TestLimitsZeroValueEnforcesNothing(t *testing.T) {
	var l Limits
	if !l.IsZero() {
		t.Fatal("zero Limits should report IsZero")
	}
	labels := make([]string, 100)
	for i := range labels {
		labels[i] = strings.Repeat("L", 200) + fmt.Sprint(i)
	}
	if err := l.CheckTags("labels", labels); err != nil {
		t.Errorf("CheckTags() = %v, want nil", err)
	}
	if err := l.CheckProperties(createLargeMap(1000)); err != nil {
		t.Errorf("CheckProperties() = %v, want nil", err)
	}
}

func TestDefaultLimits_Tags(t *testing.T) {
	l := DefaultLimits()

	tests := []struct {
		name      string
		labels    []string
		expectErr bool
		field     string
	}{
		{"Single valid label", []string{"PERSON"}, false, ""},
		{"Exactly 10 labels", []string{"L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9", "L10"}, false, ""},
		{"Too many labels", []string{"L1", "L2", "L3", "L4", "L5", "L6", "L7", "L8", "L9", "L10", "L11"}, true, "labels"},
		{"Label with special characters", []string{"Person<script>"}, true, "labels[0]"},
		{"Label too long", []string{"OK", strings.Repeat("a", 51)}, true, "labels[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.CheckTags("labels", tt.labels)
			if tt.expectErr && err == nil {
				t.Fatalf("Expected error but got nil")
			}
			if !tt.expectErr && err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if err != nil {
				if !errors.Is(err, ErrLimitExceeded) {
					t.Errorf("Expected ErrLimitExceeded, got %v", err)
				}
				if err.Field != tt.field {
					t.Errorf("Field = %q, want %q", err.Field, tt.field)
				}
			}
		})
	}
}

func TestDefaultLimits_Properties(t *testing.T) {
	l := DefaultLimits()

	if err := l.CheckProperties(createLargeMap(100)); err != nil {
		t.Errorf("Exactly 100 properties should pass: %v", err)
	}
	if err := l.CheckProperties(createLargeMap(101)); err == nil {
		t.Error("101 properties should fail")
	}
	if err := l.CheckProperties(map[string]any{strings.Repeat("k", 101): 1}); err == nil {
		t.Error("long key should fail")
	}

	var deep any = 1
	for i := 0; i < 9; i++ {
		deep = []any{deep}
	}
	err := l.CheckProperties(map[string]any{"deep": deep})
	if err == nil || err.Field != "properties.deep" {
		t.Errorf("9-deep array should fail on properties.deep, got %v", err)
	}
}

func TestLimits_CustomPattern(t *testing.T) {
	l := Limits{LabelPattern: regexp.MustCompile(`^[A-Z_]+$`)}
	if l.IsZero() {
		t.Fatal("pattern-only Limits is not zero")
	}
	if err := l.CheckTags("types", []string{"REL_TYPE"}); err != nil {
		t.Errorf("REL_TYPE should match: %v", err)
	}
	if err := l.CheckTags("types", []string{"relType"}); err == nil {
		t.Error("relType should not match")
	}
}
