package request

import (
	"github.com/shopspring/decimal"
)

type InsertProduct struct {
	Name        string          `validate:"required,min=3"  json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `validate:"required,price"  json:"price"`
	ImageUrl    string          `validate:"omitempty,url"   json:"image"`
	Quantity    int32           `validate:"required,gt=0"   json:"quantity"`
}

type UpdateProduct struct {
	Name        string          `validate:"required,min=3"  json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `validate:"required,price"  json:"price"`
	ImageUrl    string          `validate:"omitempty,url"   json:"image"`
	Quantity    int32           `validate:"gte=0"           json:"quantity"`
}
