package request

import (
	"github.com/google/uuid"
)

type AddItem struct {
	ProductID uuid.UUID `validate:"required" json:"productId"`
	Quantity  int32     `validate:"required,gt=0" json:"quantity"`
}

// UpdateQuantity sets a line item's quantity. Zero is allowed: a zero
// quantity item stays in the cart but is excluded from every aggregation.
type UpdateQuantity struct {
	Quantity int32 `validate:"gte=0" json:"quantity"`
}
