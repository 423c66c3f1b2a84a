package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/khalidaziz/dukkan/internal/cart"
	"github.com/khalidaziz/dukkan/pricing"
)

type Cart struct {
	UserID    uuid.UUID       `json:"userId"`
	Items     []cart.Item     `json:"items"`
	Summary   pricing.Summary `json:"summary"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
