package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Sentinel causes carried by ValidationError. Match them with errors.Is.
var (
	ErrEmptyLabels          = errors.New("at least one label is required")
	ErrInvalidLabel         = errors.New("label must be a non-empty string")
	ErrDuplicateLabel       = errors.New("duplicate label")
	ErrEmptyTypes           = errors.New("at least one relationship type is required")
	ErrInvalidType          = errors.New("relationship type must be a non-empty string")
	ErrInvalidPropertyKey   = errors.New("property key must be a non-empty string")
	ErrInvalidPropertyValue = errors.New("unsupported property value")
	ErrInvalidDirection     = errors.New("direction must be \"outbound\" or \"inbound\"")
	ErrInvalidEndpoint      = errors.New("endpoint is not a valid node")
	ErrUnrecognizedShape    = errors.New("value does not have the shape of a graph entity")
	ErrLimitExceeded        = errors.New("limit exceeded")
)

// ValidationError reports input that violates a structural invariant of a
// node or relationship candidate. It is a programming-input error, never a
// transient one.
type ValidationError struct {
	Op     string // Operation that failed (e.g., "MakeNode")
	Entity string // "node" or "relationship"
	Field  string // Offending field, e.g. "labels[1]" or "properties.DOB"
	Value  any    // The received value
	Cause  error  // One of the sentinel errors above
	Detail string // Additional context
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteByte(' ')
	}
	if e.Entity != "" {
		b.WriteString(e.Entity)
		b.WriteByte(' ')
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "(field %s) ", e.Field)
	}
	b.WriteString(strings.TrimSpace(fmt.Sprintf("%v", e.Cause)))
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	fmt.Fprintf(&b, " (got %s)", describe(e.Value))
	return strings.TrimSpace(b.String())
}

// Unwrap returns the underlying cause for error chain support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building ValidationErrors.
type ErrorBuilder struct {
	err ValidationError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ValidationError{Op: op}}
}

// Node attributes the error to a node.
func (b *ErrorBuilder) Node() *ErrorBuilder {
	b.err.Entity = "node"
	return b
}

// Relationship attributes the error to a relationship candidate.
func (b *ErrorBuilder) Relationship() *ErrorBuilder {
	b.err.Entity = "relationship"
	return b
}

// Field sets the offending field and the value received for it.
func (b *ErrorBuilder) Field(name string, value any) *ErrorBuilder {
	b.err.Field = name
	b.err.Value = value
	return b
}

// Detail sets additional context information.
func (b *ErrorBuilder) Detail(format string, args ...any) *ErrorBuilder {
	b.err.Detail = fmt.Sprintf(format, args...)
	return b
}

// From copies field, value, cause and detail of e, keeping the operation.
func (b *ErrorBuilder) From(e *ValidationError) *ErrorBuilder {
	b.err.Field = e.Field
	b.err.Value = e.Value
	b.err.Cause = e.Cause
	b.err.Detail = e.Detail
	return b
}

// Cause sets the underlying sentinel.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed ValidationError.
func (b *ErrorBuilder) Build() *ValidationError {
	out := b.err
	return &out
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return b.Build()
}

// fieldError is the shorthand used by the field checks, which have no op
func fieldError(field string, value any, cause error) *ValidationError {
	return NewError("").Field(field, value).Cause(cause).Build()
}

// AsValidationError extracts a *ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	_, ok := AsValidationError(err)
	return ok
}

const maxDescribedLen = 64

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	if !boundedNesting(rv, 0) {
		return fmt.Sprintf("%T nested deeper than %d levels", v, MaxValueNesting)
	}
	s := fmt.Sprintf("%T %#v", v, v)
	if len(s) > maxDescribedLen {
		cut := maxDescribedLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

// boundedNesting reports whether v can be formatted without descending more
// than MaxValueNesting containers.
func boundedNesting(v reflect.Value, level int) bool {
	if level > MaxValueNesting {
		return false
	}
	switch v.Kind() {
	case reflect.Interface:
		return v.IsNil() || boundedNesting(v.Elem(), level)
	case reflect.Pointer:
		return v.IsNil() || boundedNesting(v.Elem(), level+1)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !boundedNesting(v.Index(i), level+1) {
				return false
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !boundedNesting(v.Field(i), level+1) {
				return false
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !boundedNesting(iter.Value(), level+1) {
				return false
			}
		}
	}
	return true
}
