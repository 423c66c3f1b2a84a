package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/khalidaziz/dukkan/pricing"
)

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderId   string          `json:"orderId"`
	ProductId uuid.UUID       `json:"productId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type Order struct {
	ID              string          `json:"id"`
	PaymentIntentID string          `json:"paymentIntentId"`
	UserID          uuid.UUID       `json:"userId"`
	Items           []OrderItem     `json:"items"`
	Customer        Customer        `json:"customer"`
	Shipping        ShippingAddress `json:"shipping"`
	Summary         pricing.Summary `json:"summary"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
