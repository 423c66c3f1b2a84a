package http

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationErrors flattens validator failures into a field -> reason map
// suitable for a 400 response body.
func ValidationErrors(err error) map[string]string {
	fields := map[string]string{}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fields
	}
	for _, fieldErr := range validationErrs {
		fields[fieldErr.Field()] = fmt.Sprintf(
			"failed on the '%s' rule", fieldErr.Tag(),
		)
	}
	return fields
}
