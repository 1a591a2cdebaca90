package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator.
func New() *validatorv10.Validate {
	return validatorv10.New()
}

// Reasons maps a validation error to field -> reason pairs. A failed
// `required` tag is a missing field; a failed bound check on Quantity is an
// invalid quantity.
func Reasons(err error) map[string]string {
	out := map[string]string{}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		out["request"] = err.Error()
		return out
	}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out[field] = ReasonMissingField
		case "gt":
			out[field] = ReasonInvalidQuantity
		default:
			out[field] = fe.Tag()
		}
	}
	return out
}
