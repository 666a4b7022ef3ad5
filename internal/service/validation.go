package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/edustack/lms-api/pkg/errors"
)

// NewValidator builds the validator shared by all services: json tag
// field names plus a notblank rule (non-empty after trimming).
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// invalidPayload converts a validator error into a VALIDATION_ERROR
// carrying one reason per violated field. Structural checks run in a
// single pass, so every violation is reported, not just the first.
func invalidPayload(message string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}

	fields := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, appErrors.FieldError{Field: fieldPath(fe), Reason: fieldReason(fe)})
	}

	out := appErrors.Validation(message, fields)
	out.Err = err
	return out
}

// fieldPath strips the root struct name from the validator namespace,
// producing paths like "content[0].title".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldReason(fe validator.FieldError) string {
	if fe.Field() == "content" {
		return "at least one content item is required"
	}
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid id"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("failed validation rule %q", fe.Tag())
	}
}
