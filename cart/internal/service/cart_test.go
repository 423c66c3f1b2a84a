package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khalidaziz/dukkan/cart/pkg/request"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
)

var (
	seedUserId     = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	seedPerfumeId  = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	seedDatesBoxId = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
)

func TestFindCartEmpty(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	cart, err := env.service.FindCart(c, seedUserId)
	require.NoError(t, err)
	assert.Equal(t, seedUserId, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Summary.Total.IsZero())
	assert.Equal(t, int32(0), cart.Summary.TotalItems)
}

func TestAddItem(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	cart, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(2), cart.Items[0].Quantity)
	assert.Equal(t, "Oud Perfume", cart.Items[0].DisplayName)
	assert.True(t, mustDecimal("50").Equal(cart.Items[0].UnitPrice))

	// 100 subtotal + 25 shipping + 5 tax
	assert.True(t, mustDecimal("100").Equal(cart.Summary.Subtotal))
	assert.True(t, mustDecimal("25").Equal(cart.Summary.ShippingFee))
	assert.True(t, mustDecimal("130").Equal(cart.Summary.Total))
	assert.Equal(t, int32(2), cart.Summary.TotalItems)
}

func TestAddItemMergesExistingLine(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  1,
	})
	require.NoError(t, err)

	cart, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(3), cart.Items[0].Quantity)
}

func TestAddItemPricesFromCatalog(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  1,
	})
	require.NoError(t, err)

	// the catalog price changes under a stored line; re-adding refreshes the
	// stored unit price from the catalog
	_, err = env.pool.Exec(c, "update products set price = 60 where id = $1", seedPerfumeId)
	require.NoError(t, err)

	cart, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  1,
	})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, mustDecimal("60").Equal(cart.Items[0].UnitPrice))
	assert.True(t, mustDecimal("120").Equal(cart.Summary.Subtotal))
}

func TestAddItemExceedsStock(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	// seeded stock for the perfume is 100
	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  101,
	})
	assert.ErrorIs(t, err, inErrors.ErrOutOfStock)

	_, err = env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  100,
	})
	require.NoError(t, err)
	_, err = env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, inErrors.ErrOutOfStock)
}

func TestAddItemUnknownProduct(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestUpdateQuantity(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedDatesBoxId,
		Quantity:  2,
	})
	require.NoError(t, err)

	cart, err := env.service.UpdateQuantity(c, seedUserId, seedDatesBoxId, 20)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(20), cart.Items[0].Quantity)

	// 20 * 10.5 = 210, above the free shipping threshold
	assert.True(t, mustDecimal("210").Equal(cart.Summary.Subtotal))
	assert.True(t, cart.Summary.ShippingFee.IsZero())
	assert.True(t, mustDecimal("220.5").Equal(cart.Summary.Total))
}

func TestUpdateQuantityToZeroKeepsLine(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  2,
	})
	require.NoError(t, err)

	cart, err := env.service.UpdateQuantity(c, seedUserId, seedPerfumeId, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(0), cart.Items[0].Quantity)
	assert.True(t, cart.Summary.Total.IsZero())
	assert.Equal(t, int32(0), cart.Summary.TotalItems)
}

func TestUpdateQuantityAbsentLine(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.UpdateQuantity(c, seedUserId, seedPerfumeId, 3)
	assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
}

func TestRemoveItem(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  1,
	})
	require.NoError(t, err)
	_, err = env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedDatesBoxId,
		Quantity:  4,
	})
	require.NoError(t, err)

	cart, err := env.service.RemoveItem(c, seedUserId, seedPerfumeId)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, seedDatesBoxId, cart.Items[0].ProductID)
	assert.True(t, mustDecimal("42").Equal(cart.Summary.Subtotal))
}

func TestClearCart(t *testing.T) {
	c := context.Background()
	env := setupCart(t, c)
	defer env.teardown(t)

	_, err := env.service.AddItem(c, seedUserId, request.AddItem{
		ProductID: seedPerfumeId,
		Quantity:  2,
	})
	require.NoError(t, err)

	require.NoError(t, env.service.ClearCart(c, seedUserId))

	cart, err := env.service.FindCart(c, seedUserId)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Summary.Total.IsZero())
}
