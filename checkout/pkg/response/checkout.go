package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/khalidaziz/dukkan/pricing"
)

// Checkout is the externally visible view of a checkout attempt. The client
// secret is included only while the attempt still needs card confirmation;
// it is never stored past that.
type Checkout struct {
	ID            string          `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	State         string          `json:"state"`
	Summary       pricing.Summary `json:"summary"`
	FailureReason string          `json:"failureReason,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type PlacedOrder struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	State   string `json:"state"`
}
