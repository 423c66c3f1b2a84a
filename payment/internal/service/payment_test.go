package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/payment"
	"github.com/khalidaziz/dukkan/payment/pkg/request"
)

type fakeGateway struct {
	intents map[string]payment.Intent
	created []payment.CreateIntentParams
	err     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]payment.Intent{}}
}

func (g *fakeGateway) CreateIntent(
	_ context.Context,
	param payment.CreateIntentParams,
) (payment.Intent, error) {
	if g.err != nil {
		return payment.Intent{}, g.err
	}
	g.created = append(g.created, param)
	if intent, ok := g.intents[param.IdempotencyKey]; ok {
		return intent, nil
	}
	intent := payment.Intent{
		ID:           fmt.Sprintf("pi_fake_%d", len(g.intents)+1),
		ClientSecret: fmt.Sprintf("pi_fake_%d_secret", len(g.intents)+1),
		Amount:       param.Amount,
		Currency:     param.Currency,
		Status:       payment.IntentStatusRequiresConfirmation,
	}
	g.intents[param.IdempotencyKey] = intent
	return intent, nil
}

func (g *fakeGateway) ConfirmIntent(
	_ context.Context,
	param payment.ConfirmIntentParams,
) (payment.Intent, error) {
	return payment.Intent{}, fmt.Errorf("not used")
}

func TestCreateIntent(t *testing.T) {
	gateway := newFakeGateway()
	paymentService := NewPaymentService(gateway)

	intent, err := paymentService.CreateIntent(context.Background(), request.CreateIntent{
		Amount:   decimal.RequireFromString("130.25"),
		Currency: "aed",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, intent.PaymentIntentID)
	assert.NotEmpty(t, intent.ClientSecret)
	assert.Equal(t, "aed", intent.Currency)
	assert.True(t, decimal.RequireFromString("130.25").Equal(intent.Amount))

	// amount reaches the processor in minor units
	require.Len(t, gateway.created, 1)
	assert.Equal(t, int64(13025), gateway.created[0].Amount)
}

func TestCreateIntentMissingCurrency(t *testing.T) {
	gateway := newFakeGateway()
	paymentService := NewPaymentService(gateway)

	_, err := paymentService.CreateIntent(context.Background(), request.CreateIntent{
		Amount: decimal.RequireFromString("130.25"),
	})
	assert.ErrorIs(t, err, inErrors.ErrValidation)

	// rejected before the processor is ever touched
	assert.Empty(t, gateway.created)
}

func TestCreateIntentNormalizesCurrency(t *testing.T) {
	gateway := newFakeGateway()
	paymentService := NewPaymentService(gateway)

	intent, err := paymentService.CreateIntent(context.Background(), request.CreateIntent{
		Amount:   decimal.RequireFromString("10"),
		Currency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "usd", intent.Currency)
}

func TestCreateIntentReplaysOnSameCharge(t *testing.T) {
	gateway := newFakeGateway()
	paymentService := NewPaymentService(gateway)

	param := request.CreateIntent{
		Amount:   decimal.RequireFromString("130"),
		Currency: "aed",
		Metadata: map[string]string{"userId": "u1", "checkoutId": "c1"},
	}
	first, err := paymentService.CreateIntent(context.Background(), param)
	require.NoError(t, err)
	second, err := paymentService.CreateIntent(context.Background(), param)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentIntentID, second.PaymentIntentID)

	// a different charge gets its own intent
	param.Amount = decimal.RequireFromString("131")
	third, err := paymentService.CreateIntent(context.Background(), param)
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentIntentID, third.PaymentIntentID)
}

func TestCreateIntentGatewayError(t *testing.T) {
	gateway := newFakeGateway()
	gateway.err = fmt.Errorf("processor unreachable")
	paymentService := NewPaymentService(gateway)

	_, err := paymentService.CreateIntent(context.Background(), request.CreateIntent{
		Amount:   decimal.RequireFromString("10"),
		Currency: "aed",
	})
	assert.Error(t, err)
}

func TestIdempotencyKeyStable(t *testing.T) {
	// map iteration order must not leak into the key
	a := IdempotencyKey("aed", 13000, map[string]string{"userId": "u1", "checkoutId": "c1"})
	b := IdempotencyKey("aed", 13000, map[string]string{"checkoutId": "c1", "userId": "u1"})
	assert.Equal(t, a, b)

	c := IdempotencyKey("aed", 13100, map[string]string{"userId": "u1", "checkoutId": "c1"})
	assert.NotEqual(t, a, c)
}
