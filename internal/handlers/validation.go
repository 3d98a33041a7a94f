package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formatValidationErrors flattens validator failures into one client-facing
// message.
func formatValidationErrors(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid body"
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		switch fe.Tag() {
		case "required":
			msgs[i] = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			msgs[i] = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			msgs[i] = fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		case "len":
			msgs[i] = fmt.Sprintf("%s must be exactly %s characters long", fe.Field(), fe.Param())
		case "gt":
			msgs[i] = fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
		case "gte":
			msgs[i] = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		default:
			msgs[i] = fmt.Sprintf("validation failed on field '%s' for tag '%s'", fe.Field(), fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
