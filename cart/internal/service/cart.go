package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/khalidaziz/dukkan/cart/internal/otel"
	"github.com/khalidaziz/dukkan/cart/pkg/request"
	"github.com/khalidaziz/dukkan/cart/pkg/response"
	inCart "github.com/khalidaziz/dukkan/internal/cart"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/internal/repository"
	"github.com/khalidaziz/dukkan/pricing"
)

type CartService struct {
	queries *repository.Queries
	store   *inCart.Store
	calc    pricing.Calculator
}

func NewCartService(
	queries *repository.Queries,
	store *inCart.Store,
	calc pricing.Calculator,
) *CartService {
	return &CartService{queries: queries, store: store, calc: calc}
}

func (s *CartService) FindCart(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger.Info().Msg("finding cart")
	cart, err := s.store.Load(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartItems, len(cart.Items)).Msg("found cart")

	return s.respond(cart), nil
}

func (s *CartService) AddItem(
	c context.Context,
	userId uuid.UUID,
	param request.AddItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.queries.FindProductById(c, param.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "merging cart item").Logger()
	logger.Info().Msg("merging cart item")
	cart, err := s.store.Load(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	// unit price, name and image always come from the catalog, never from
	// the client
	unitPrice := decimal.NewFromBigInt(product.Price.Int, product.Price.Exp)
	merged := false
	for i, item := range cart.Items {
		if item.ProductID == param.ProductID {
			if item.Quantity+param.Quantity > product.Quantity {
				err = fmt.Errorf(
					"requested quantity=%d exceeds stock=%d with error=%w",
					item.Quantity+param.Quantity, product.Quantity, inErrors.ErrOutOfStock)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.Cart{}, err
			}
			cart.Items[i].Quantity += param.Quantity
			cart.Items[i].UnitPrice = unitPrice
			cart.Items[i].DisplayName = product.Name
			cart.Items[i].ImageUrl = product.ImageUrl
			merged = true
			break
		}
	}
	if !merged {
		if param.Quantity > product.Quantity {
			err = fmt.Errorf(
				"requested quantity=%d exceeds stock=%d with error=%w",
				param.Quantity, product.Quantity, inErrors.ErrOutOfStock)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		cart.Items = append(cart.Items, inCart.Item{
			ProductID:   param.ProductID,
			Quantity:    param.Quantity,
			UnitPrice:   unitPrice,
			DisplayName: product.Name,
			ImageUrl:    product.ImageUrl,
		})
	}
	logger.Info().Msg("merged cart item")

	if err := s.store.Save(c, &cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	return s.respond(cart), nil
}

func (s *CartService) UpdateQuantity(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
	quantity int32,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Int32("quantity", quantity).
		Logger()

	logger.Info().Msg("updating quantity")
	cart, err := s.store.Load(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	found := false
	for i, item := range cart.Items {
		if item.ProductID == productId {
			cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		err = fmt.Errorf(
			"failed updating quantity of productId=%s with error=%w",
			productId.String(),
			inErrors.ErrProductNotFound,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	if err := s.store.Save(c, &cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("updated quantity")

	return s.respond(cart), nil
}

// RemoveItem drops the line item outright instead of zeroing its quantity.
func (s *CartService) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger.Info().Msg("removing cart item")
	cart, err := s.store.Load(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productId {
			items = append(items, item)
		}
	}
	cart.Items = items

	if err := s.store.Save(c, &cart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("removed cart item")

	return s.respond(cart), nil
}

func (s *CartService) ClearCart(c context.Context, userId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger.Info().Msg("clearing cart")
	if err := s.store.Delete(c, userId); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")

	return nil
}

// respond recomputes the summary on every read; a cart summary is never
// stored.
func (s *CartService) respond(cart inCart.Cart) response.Cart {
	return response.Cart{
		UserID:    cart.UserID,
		Items:     cart.Items,
		Summary:   s.calc.Summarize(cart.Lines()),
		UpdatedAt: cart.UpdatedAt,
	}
}
