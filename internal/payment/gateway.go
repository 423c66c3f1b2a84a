// Package payment wraps the card processor behind a small gateway interface
// so the checkout orchestration can be exercised against a fake.
package payment

import (
	"context"
)

// Intent is the transient reference this system holds to a processor-owned
// payment intent. The client secret is opaque and short-lived.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
}

const (
	IntentStatusSucceeded            = "succeeded"
	IntentStatusRequiresConfirmation = "requires_confirmation"
	IntentStatusRequiresPayment      = "requires_payment_method"
	IntentStatusCanceled             = "canceled"
)

type CreateIntentParams struct {
	// Amount is in minor currency units (fils for AED).
	Amount   int64
	Currency string
	Metadata map[string]string
	// IdempotencyKey dedupes retried create calls at the processor so
	// abandoned intents do not accumulate.
	IdempotencyKey string
}

type ConfirmIntentParams struct {
	IntentID      string
	PaymentMethod string
}

type Gateway interface {
	CreateIntent(c context.Context, param CreateIntentParams) (Intent, error)
	ConfirmIntent(c context.Context, param ConfirmIntentParams) (Intent, error)
}
