// Package validate wraps go-playground/validator and turns its failures into
// user facing field errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"lifelink/pkg/types"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json names so API clients see what they sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomRules(v)

	return &Validator{validate: v}
}

// Struct validates input and returns a *types.Error of kind validation
// carrying one message per failing field.
func (v *Validator) Struct(input any) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}

	return types.ValidationError("Please fix the highlighted fields.", fields)
}

// fieldPath drops the root struct name from the namespace: location.lat
// rather than CreateAlertInput.location.lat.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "dive":
		return "Contains an invalid value."
	case "unique":
		return "Must not contain duplicates."
	case "is-blood-type":
		return "Must be a valid blood type."
	case "is-organ":
		return "Must be a valid organ."
	case "is-urgency":
		return "Must be low, medium, high or critical."
	case "is-phone":
		return "Enter a valid phone number."
	case "is-role":
		return "Must be donor, recipient or coordinator."
	default:
		return fmt.Sprintf("Invalid value (failed on '%s').", fe.Tag())
	}
}
