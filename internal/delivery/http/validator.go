package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// describe turns validation failures into a single client-facing message.
func describe(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request"
	}
	return strings.Join(lo.Map(validationErrs, func(e validator.FieldError, _ int) string {
		if e.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", lowerFirst(e.Field()), e.Tag(), e.Param())
		}
		return fmt.Sprintf("%s must satisfy %s", lowerFirst(e.Field()), e.Tag())
	}), "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
