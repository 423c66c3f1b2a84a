package request

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderMasksPaymentMethod(t *testing.T) {
	placeOrder := PlaceOrder{
		PaymentMethod: "pm_card_visa",
		ExpectedTotal: decimal.RequireFromString("130"),
	}

	raw, err := json.Marshal(placeOrder)
	require.NoError(t, err)

	decoded := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "***", decoded["paymentMethod"])
	assert.NotContains(t, string(raw), "pm_card_visa")
	assert.EqualValues(t, "pm_card_visa", placeOrder.PaymentMethod)
}
