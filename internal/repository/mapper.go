package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	orderResponse "github.com/khalidaziz/dukkan/order/pkg/response"
	productResponse "github.com/khalidaziz/dukkan/product/pkg/response"
	"github.com/khalidaziz/dukkan/pricing"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		NaN:              false,
		Valid:            true,
	}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       DecimalFromNumeric(p.Price),
		ImageUrl:    p.ImageUrl,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (o Order) Response(items []OrderItem) orderResponse.Order {
	orderItems := make([]orderResponse.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, orderResponse.OrderItem{
			ID:        item.ID,
			OrderId:   item.OrderID,
			ProductId: item.ProductID,
			Quantity:  item.Quantity,
			Price:     DecimalFromNumeric(item.Price),
		})
	}
	return orderResponse.Order{
		ID:              o.ID,
		PaymentIntentID: o.PaymentIntentID,
		UserID:          o.UserID,
		Items:           orderItems,
		Customer: orderResponse.Customer{
			FirstName: o.FirstName,
			LastName:  o.LastName,
			Email:     o.Email,
			Phone:     o.Phone.String,
		},
		Shipping: orderResponse.ShippingAddress{
			Address:    o.Address,
			City:       o.City,
			Region:     o.Region,
			PostalCode: o.PostalCode,
			Country:    o.Country,
		},
		Summary: pricing.Summary{
			Subtotal:    DecimalFromNumeric(o.Subtotal),
			ShippingFee: DecimalFromNumeric(o.ShippingFee),
			Tax:         DecimalFromNumeric(o.Tax),
			Total:       DecimalFromNumeric(o.Total),
			TotalItems:  o.TotalItems,
		},
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.Time,
		UpdatedAt: o.UpdatedAt.Time,
	}
}
