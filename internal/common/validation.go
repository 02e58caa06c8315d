package common

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = newValidator()

// newValidator reports fields by their JSON name when they have one.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed field of one struct.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// ValidateStruct checks the `validate` tags of s.
func ValidateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateAndReturnError validates s and maps failures to a gRPC InvalidArgument.
func ValidateAndReturnError(s any) error {
	if err := ValidateStruct(s); err != nil {
		return InvalidArgumentError(err.Error())
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, ValidationError{Field: field, Message: "is required"})
		case "oneof":
			out = append(out, ValidationError{Field: field, Message: "must be one of [" + e.Param() + "]"})
		case "base64":
			out = append(out, ValidationError{Field: field, Message: "must be base64"})
		case "max":
			out = append(out, ValidationError{Field: field, Message: "must not exceed " + e.Param()})
		default:
			out = append(out, ValidationError{Field: field, Message: "failed " + e.Tag()})
		}
	}
	return out
}
