package validate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	validate *validator.Validate

	// phone numbers are optional but must look like a UAE number when present
	uaePhonePattern   = regexp.MustCompile(`^(\+971|00971|971)?[0-9]{8,9}$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
)

func New() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("uae_phone", ValidateUaePhone)
		_ = validate.RegisterValidation("postal_code", ValidatePostalCode)
		_ = validate.RegisterValidation("price", ValidatePrice)
	})
	return validate
}

func ValidateUaePhone(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return uaePhonePattern.MatchString(strings.ReplaceAll(value, " ", ""))
}

func ValidatePostalCode(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return postalCodePattern.MatchString(value)
}

func ValidatePrice(fl validator.FieldLevel) bool {
	switch value := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return value.IsPositive()
	case string:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return false
		}
		return d.IsPositive()
	default:
		return false
	}
}
