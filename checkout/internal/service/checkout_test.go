package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khalidaziz/dukkan/checkout/internal/session"
	"github.com/khalidaziz/dukkan/checkout/pkg/request"
	inCart "github.com/khalidaziz/dukkan/internal/cart"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	orderRequest "github.com/khalidaziz/dukkan/order/pkg/request"
)

var (
	seedUserId    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	seedPerfumeId = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
)

// seedCart stores two perfumes at the seeded catalog price: subtotal 100,
// shipping 25, tax 5, total 130.
func seedCart(t *testing.T, c context.Context, env *checkoutEnv) {
	cart := inCart.Cart{
		UserID: seedUserId,
		Items: []inCart.Item{
			{
				ProductID:   seedPerfumeId,
				Quantity:    2,
				UnitPrice:   mustDecimal("50"),
				DisplayName: "Oud Perfume",
			},
		},
	}
	require.NoError(t, env.carts.Save(c, &cart))
}

func placeOrderFixture() request.PlaceOrder {
	return request.PlaceOrder{
		Customer: orderRequest.Customer{
			FirstName: "Amina",
			LastName:  "Hassan",
			Email:     "amina@example.com",
			Phone:     "971501234567",
		},
		Shipping: orderRequest.ShippingAddress{
			Address:    "12 Al Wasl Road",
			City:       "Dubai",
			Region:     "Dubai",
			PostalCode: "00001",
			Country:    "AE",
		},
		PaymentMethod: "pm_card_visa",
		ExpectedTotal: mustDecimal("130"),
	}
}

func TestPlaceOrder(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)
	seedCart(t, c, env)

	placed, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	require.NoError(t, err)
	assert.True(t, placed.Success)
	assert.NotEmpty(t, placed.OrderID)
	assert.Equal(t, session.StateConfirmed.String(), placed.State)

	assert.Equal(t, 1, env.gateway.createCalls)
	assert.Equal(t, 1, env.gateway.confirmCalls)

	require.Len(t, env.saver.attempts, 1)
	saved := env.saver.attempts[0]
	assert.Equal(t, placed.OrderID, saved.ID)
	assert.Equal(t, seedUserId, saved.UserID)
	assert.True(t, mustDecimal("130").Equal(saved.Summary.Total))
	assert.True(t, mustDecimal("100").Equal(saved.Summary.Subtotal))
	require.Len(t, saved.Items, 1)
	assert.True(t, mustDecimal("50").Equal(saved.Items[0].Price))

	// line items survive with zero quantity, the session does not survive
	cart, err := env.carts.Load(c, seedUserId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(0), cart.Items[0].Quantity)
	assert.True(t, cart.Empty())

	_, err = env.sessions.Load(c, seedUserId)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)

	_, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	assert.Equal(t, 0, env.gateway.createCalls)
	assert.Empty(t, env.saver.attempts)
}

func TestPlaceOrderPriceMismatch(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)
	seedCart(t, c, env)

	param := placeOrderFixture()
	param.ExpectedTotal = mustDecimal("120")
	_, err := env.service.PlaceOrder(c, seedUserId, param)
	assert.ErrorIs(t, err, inErrors.ErrPriceMismatch)

	// rejected before the processor or the order service is ever touched
	assert.Equal(t, 0, env.gateway.createCalls)
	assert.Empty(t, env.saver.attempts)
}

func TestPlaceOrderStaleCartPrice(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)

	// the stored cart price is stale; checkout prices from the catalog, so
	// the displayed total computed from the stale price no longer matches
	cart := inCart.Cart{
		UserID: seedUserId,
		Items: []inCart.Item{
			{ProductID: seedPerfumeId, Quantity: 2, UnitPrice: mustDecimal("40")},
		},
	}
	require.NoError(t, env.carts.Save(c, &cart))

	param := placeOrderFixture()
	param.ExpectedTotal = mustDecimal("109")
	_, err := env.service.PlaceOrder(c, seedUserId, param)
	assert.ErrorIs(t, err, inErrors.ErrPriceMismatch)
}

func TestPlaceOrderCardDeclined(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)
	seedCart(t, c, env)

	env.gateway.confirmErr = inErrors.ErrCardDeclined
	_, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	assert.ErrorIs(t, err, inErrors.ErrCardDeclined)
	assert.Empty(t, env.saver.attempts)

	// the cart keeps its quantities, the session parks in failed with the
	// reason kept for the customer
	cart, err := env.carts.Load(c, seedUserId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)

	sess, err := env.sessions.Load(c, seedUserId)
	require.NoError(t, err)
	assert.Equal(t, session.StateFailed, sess.State)
	assert.NotEmpty(t, sess.FailureReason)
}

func TestPlaceOrderRetryAfterDecline(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)
	seedCart(t, c, env)

	env.gateway.confirmErr = inErrors.ErrCardDeclined
	_, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	require.ErrorIs(t, err, inErrors.ErrCardDeclined)

	env.gateway.confirmErr = nil
	placed, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	require.NoError(t, err)
	assert.True(t, placed.Success)

	// the retry reuses the intent the first attempt created
	assert.Equal(t, 2, env.gateway.createCalls)
	require.Len(t, env.saver.attempts, 1)
	assert.Equal(t, placed.OrderID, env.saver.attempts[0].ID)
}

func TestPlaceOrderRetryAfterSaveFailure(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)
	seedCart(t, c, env)

	env.saver.failNext = 1
	_, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	require.ErrorIs(t, err, inErrors.ErrPersistence)

	// payment succeeded but the save failed: the cart must stay intact so
	// nothing the customer paid for is lost, and the session must remember
	// the charge was captured
	cart, err := env.carts.Load(c, seedUserId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)

	sess, err := env.sessions.Load(c, seedUserId)
	require.NoError(t, err)
	assert.Equal(t, session.StateFailed, sess.State)
	assert.True(t, sess.Paid)
	assert.NotEmpty(t, sess.IntentID)

	placed, err := env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	require.NoError(t, err)
	assert.True(t, placed.Success)

	// the retry never touches the processor again, it only replays the same
	// order id against the payment intent that already succeeded
	assert.Equal(t, 1, env.gateway.createCalls)
	assert.Equal(t, 1, env.gateway.confirmCalls)
	require.Len(t, env.saver.attempts, 2)
	assert.Equal(t, env.saver.attempts[0].ID, env.saver.attempts[1].ID)
	assert.Equal(t, env.saver.attempts[0].PaymentIntentID, env.saver.attempts[1].PaymentIntentID)

	cart, err = env.carts.Load(c, seedUserId)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}

func TestFindSession(t *testing.T) {
	c := context.Background()
	env := setupCheckout(t, c)
	defer env.teardown(t)
	seedCart(t, c, env)

	_, err := env.service.FindSession(c, seedUserId)
	assert.ErrorIs(t, err, session.ErrNotFound)

	env.gateway.confirmErr = inErrors.ErrCardDeclined
	_, err = env.service.PlaceOrder(c, seedUserId, placeOrderFixture())
	require.ErrorIs(t, err, inErrors.ErrCardDeclined)

	found, err := env.service.FindSession(c, seedUserId)
	require.NoError(t, err)
	assert.Equal(t, seedUserId, found.UserID)
	assert.Equal(t, session.StateFailed.String(), found.State)
	assert.True(t, mustDecimal("130").Equal(found.Summary.Total))
	assert.NotEmpty(t, found.FailureReason)
}
