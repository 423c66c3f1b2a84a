package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateUaePhone(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"local format", "0501234567", true},
		{"country code without plus", "971501234567", true},
		{"country code with plus", "+971501234567", true},
		{"international prefix", "00971501234567", true},
		{"spaces are tolerated", "971 50 123 4567", true},
		{"too short", "12345", false},
		{"letters", "97150abc4567", false},
		{"foreign number", "+14155551234", false},
		{"empty", "", false},
	}
	validate := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Var(tt.value, "uae_phone")
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePostalCode(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"five digits", "00001", true},
		{"another five digits", "54321", true},
		{"four digits", "1234", false},
		{"six digits", "123456", false},
		{"letters", "abcde", false},
		{"empty", "", false},
	}
	validate := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Var(tt.value, "postal_code")
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePrice(t *testing.T) {
	validate := New()

	assert.NoError(t, validate.Var(decimal.RequireFromString("130.25"), "price"))
	assert.NoError(t, validate.Var(decimal.RequireFromString("0.01"), "price"))
	assert.NoError(t, validate.Var("10.5", "price"))

	assert.Error(t, validate.Var(decimal.Zero, "price"), "zero is not a chargeable amount")
	assert.Error(t, validate.Var(decimal.RequireFromString("-5"), "price"))
	assert.Error(t, validate.Var("", "price"))
	assert.Error(t, validate.Var("not-a-number", "price"))
	assert.Error(t, validate.Var(42, "price"), "only decimals and decimal strings qualify")
}
