package request

import (
	"github.com/shopspring/decimal"
)

// CreateIntent carries the charge amount in major currency units (e.g.
// 130.25 AED); conversion to minor units happens server-side.
type CreateIntent struct {
	Amount   decimal.Decimal   `validate:"required,price" json:"amount"`
	Currency string            `validate:"required" json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
