// Package validation runs struct-tag validation at the service boundary and
// turns failures into apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// price: free-text per-day amount that parses to a positive number
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := utils.ParsePrice(fl.Field().String())
		return err == nil
	})
	// category: one of the listing categories
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, c := range domain.ItemCategories {
			if c == value {
				return true
			}
		}
		return false
	})
	return v
}

// Struct validates v and returns nil or an *apperr.Error with per-field messages.
func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return format(err)
	}
	return nil
}

func format(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := make(map[string]string, len(errs))
		for _, fe := range errs {
			details[fe.Field()] = message(fe)
		}
		return apperr.Validation("validation failed", details)
	}
	return apperr.Wrap(apperr.CodeValidation, err, "validation failed")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "price":
		return "must be a number greater than zero"
	case "category":
		return "must be one of " + strings.Join(domain.ItemCategories, ", ")
	case "eqfield":
		return "must match " + fe.Param()
	}
	return "is invalid"
}
