package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	ImageUrl    string
	Quantity    int32
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Order struct {
	ID              string
	PaymentIntentID string
	UserID          uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Phone           pgtype.Text
	Address         string
	City            string
	Region          string
	PostalCode      string
	Country         string
	Subtotal        pgtype.Numeric
	ShippingFee     pgtype.Numeric
	Tax             pgtype.Numeric
	Total           pgtype.Numeric
	TotalItems      int32
	Status          OrderStatus
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   string
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
}
