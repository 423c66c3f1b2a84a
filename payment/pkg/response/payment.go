package response

import (
	"github.com/shopspring/decimal"
)

type PaymentIntent struct {
	PaymentIntentID string          `json:"paymentIntentId"`
	ClientSecret    string          `json:"clientSecret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}
