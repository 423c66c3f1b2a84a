package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	orderRequest "github.com/khalidaziz/dukkan/order/pkg/request"
)

// PlaceOrder is the single submission that drives a checkout attempt from
// form entry to a saved order. ExpectedTotal is the total the customer was
// shown; the server recomputes from the cart and rejects on disagreement.
type PlaceOrder struct {
	Customer      orderRequest.Customer        `validate:"required" json:"customer"`
	Shipping      orderRequest.ShippingAddress `validate:"required" json:"shipping"`
	PaymentMethod string                       `validate:"required" json:"paymentMethod"`
	ExpectedTotal decimal.Decimal              `validate:"required" json:"expectedTotal"`
}

// MarshalJSON masks the payment method reference, it must never be logged
// or echoed back.
func (p PlaceOrder) MarshalJSON() ([]byte, error) {
	p.PaymentMethod = "***"
	type P PlaceOrder
	return json.Marshal(P(p))
}

func (p PlaceOrder) MarshalZerologObject(e *zerolog.Event) {
	e.Str("firstName", p.Customer.FirstName).
		Str("lastName", p.Customer.LastName).
		Str("email", p.Customer.Email).
		Str("city", p.Shipping.City).
		Str("paymentMethod", "***").
		Str("expectedTotal", p.ExpectedTotal.String())
}
