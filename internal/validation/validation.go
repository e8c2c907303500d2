// Package validation wraps go-playground/validator and converts its errors
// into VALIDATION_FAILED domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// BcryptMaxBytes is the longest password bcrypt accepts.
const BcryptMaxBytes = 72

// Validator checks struct tags and single values.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that reports fields by their JSON names and knows
// the bcryptmax rule.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("bcryptmax", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= BcryptMaxBytes
	})
	return &Validator{validate: v}
}

// Struct validates s against its `validate` tags.
func (v *Validator) Struct(s any) error {
	return toDomainError(v.validate.Struct(s))
}

// Var validates one value; field names it in the resulting error.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return toDomainError(err)
	}
	fe := verrs[0]
	return apperrors.NewValidationError(message(field, fe.Tag()), details(field, fe))
}

func toDomainError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewInternalError(err)
	}

	first := verrs[0]
	out := details(first.Field(), first)
	if len(verrs) > 1 {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		out["fields"] = fields
	}
	return apperrors.NewValidationError(message(first.Field(), first.Tag()), out)
}

func details(field string, fe validator.FieldError) map[string]any {
	d := map[string]any{"field": field, "rule": fe.Tag()}
	switch fe.Tag() {
	case "min":
		d["min_length"] = fe.Param()
	case "max":
		d["max_length"] = fe.Param()
	case "bcryptmax":
		d["max_bytes"] = BcryptMaxBytes
	}
	return d
}

func message(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " is not well-formed"
	case "min":
		return field + " too short"
	case "max", "bcryptmax":
		return field + " too long"
	default:
		return fmt.Sprintf("%s failed %s", field, tag)
	}
}
