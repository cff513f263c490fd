package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-graphbuilder/pkg/entity"
)

// validate is a singleton validator instance. It is configured once in init
// and only read afterwards, which the library supports concurrently.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// NodeRequest is the raw input of a node build
type NodeRequest struct {
	Labels     []string       `json:"labels" validate:"required,min=1,dive,required"`
	Properties map[string]any `json:"properties"`
}

// RelationshipRequest is the raw input of a relationship candidate build
type RelationshipRequest struct {
	Types      []string         `json:"types" validate:"required,min=1,dive,required"`
	Properties map[string]any   `json:"properties"`
	Direction  entity.Direction `json:"direction" validate:"required,oneof=outbound inbound"`
	Endpoint   *entity.Node     `json:"endpoint" validate:"required"`
}

// ValidateNodeRequest validates a node build request. The returned error, if
// any, is a *ValidationError.
func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return fieldError("", nil, ErrUnrecognizedShape)
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if verr := CheckProperties(req.Properties); verr != nil {
		return verr
	}
	return nil
}

// ValidateRelationshipRequest validates a relationship candidate build
// request, including the structural validity of its endpoint.
func ValidateRelationshipRequest(req *RelationshipRequest) error {
	if req == nil {
		return fieldError("", nil, ErrUnrecognizedShape)
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if verr := CheckProperties(req.Properties); verr != nil {
		return verr
	}
	if verr := CheckEndpoint(req.Endpoint); verr != nil {
		return verr
	}
	return nil
}

// formatValidationError converts validator errors into a *ValidationError
// carrying the matching sentinel cause.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return NewError("").Cause(ErrUnrecognizedShape).Detail("%v", err).Build()
	}

	// Report the first failure only
	e := validationErrs[0]
	field := e.Field()
	base, _, element := strings.Cut(field, "[")

	var cause error
	switch base {
	case "labels":
		cause = ErrEmptyLabels
		if element {
			cause = ErrInvalidLabel
		}
	case "types":
		cause = ErrEmptyTypes
		if element {
			cause = ErrInvalidType
		}
	case "direction":
		cause = ErrInvalidDirection
	case "endpoint":
		cause = ErrInvalidEndpoint
	default:
		cause = fmt.Errorf("validation failed (%s)", e.Tag())
	}

	return fieldError(field, e.Value(), cause)
}
