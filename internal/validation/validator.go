// Package validation checks authored payloads and decoded datastore rows
// with go-playground/validator, reporting failures as INVALID_INPUT or DECODE errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"stackit/internal/utils"
)

// Validator wraps go-playground/validator with AppError conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names and
// treats the zero UUID as missing.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// uuid.UUID is a byte array; without this "required" accepts uuid.Nil.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if id, ok := field.Interface().(uuid.UUID); ok && id != uuid.Nil {
			return id.String()
		}
		return ""
	}, uuid.UUID{})

	return &Validator{v: v}
}

// Validate checks an input payload. Failures become INVALID_INPUT with per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidateRow checks a record decoded from the datastore. Failures become DECODE errors,
// since a row that does not match its declared shape is a boundary fault, not bad input.
func (v *Validator) ValidateRow(table string, row any) error {
	if err := v.v.Struct(row); err != nil {
		appErr := v.formatError(err)
		var ve *utils.AppError
		if errors.As(appErr, &ve) {
			return &utils.AppError{
				Code:    utils.ErrDecode,
				Message: fmt.Sprintf("unexpected %s row shape", table),
				Details: ve.Details,
			}
		}
		return utils.NewAppError(utils.ErrDecode, fmt.Sprintf("unexpected %s row shape", table), err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return utils.NewAppError(utils.ErrInvalidInput, "validation failed", err)
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = friendlyMessage(e)
	}
	return utils.NewValidationError(fieldErrors)
}

// fieldPath drops the struct name from the namespace: "NewQuestion.tags[2]" -> "tags[2]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

//nolint:gocyclo // Switch statement covering validation tags is intentionally exhaustive.
func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not contain more than %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "unique":
		return "must not contain duplicates"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
