package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	FirstName string `validate:"required"           json:"firstName"`
	LastName  string `validate:"required"           json:"lastName"`
	Email     string `validate:"required,email"     json:"email"`
	Phone     string `validate:"omitempty,uae_phone" json:"phone,omitempty"`
}

type ShippingAddress struct {
	Address    string `validate:"required"             json:"address"`
	City       string `validate:"required"             json:"city"`
	Region     string `validate:"required"             json:"region"`
	PostalCode string `validate:"required,postal_code" json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItem struct {
	ProductID uuid.UUID       `validate:"required"      json:"productId"`
	Quantity  int32           `validate:"required,gt=0" json:"quantity"`
	Price     decimal.Decimal `validate:"required"      json:"price"`
}

type Summary struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	TotalItems int32           `json:"totalItems"`
}

// SaveOrder is the full order record as assembled after a succeeded payment
// confirmation. The id is caller generated so a retry after a failed save
// carries the same id and replays idempotently.
type SaveOrder struct {
	ID              string          `validate:"required" json:"id"`
	PaymentIntentID string          `validate:"required" json:"paymentIntentId"`
	UserID          uuid.UUID       `validate:"required" json:"userId"`
	Items           []OrderItem     `validate:"required,min=1,dive" json:"items"`
	Customer        Customer        `validate:"required" json:"customer"`
	Shipping        ShippingAddress `validate:"required" json:"shipping"`
	Summary         Summary         `validate:"required" json:"summary"`
	Timestamp       time.Time       `json:"timestamp"`
}

type FindOrders struct {
	UserID uuid.UUID `validate:"required" json:"userId"`
}
