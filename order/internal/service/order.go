package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/internal/repository"
	"github.com/khalidaziz/dukkan/order/internal/otel"
	"github.com/khalidaziz/dukkan/order/pkg/request"
	"github.com/khalidaziz/dukkan/order/pkg/response"
	"github.com/khalidaziz/dukkan/pricing"
)

const uniqueViolation = "23505"

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	calc    pricing.Calculator
}

func NewOrderService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	calc pricing.Calculator,
) *OrderService {
	return &OrderService{pool: pool, queries: queries, calc: calc}
}

// SaveOrder durably records a confirmed order. Resubmitting the same order
// id or payment intent id is a no-op that returns the originally saved
// order, so a client retry after a lost response cannot create a duplicate.
func (s *OrderService) SaveOrder(
	c context.Context,
	param request.SaveOrder,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService SaveOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService SaveOrder").
		Str(log.KeyOrderID, param.ID).
		Str(log.KeyPaymentIntentID, param.PaymentIntentID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying pricing").Logger()
	logger.Info().Msg("verifying pricing against catalog")
	if err := s.verifyPricing(c, param); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("verified pricing against catalog")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Info().Msg("initialized transaction")

	phone := pgtype.Text{String: param.Customer.Phone, Valid: param.Customer.Phone != ""}
	country := param.Shipping.Country
	if country == "" {
		country = "United Arab Emirates"
	}

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	inserted, err := s.queries.WithTx(tx).InsertOrder(c, repository.InsertOrderParams{
		ID:              param.ID,
		PaymentIntentID: param.PaymentIntentID,
		UserID:          param.UserID,
		FirstName:       param.Customer.FirstName,
		LastName:        param.Customer.LastName,
		Email:           param.Customer.Email,
		Phone:           phone,
		Address:         param.Shipping.Address,
		City:            param.Shipping.City,
		Region:          param.Shipping.Region,
		PostalCode:      param.Shipping.PostalCode,
		Country:         country,
		Subtotal:        repository.NumericFromDecimal(param.Summary.Subtotal),
		ShippingFee:     repository.NumericFromDecimal(param.Summary.Shipping),
		Tax:             repository.NumericFromDecimal(param.Summary.Tax),
		Total:           repository.NumericFromDecimal(param.Summary.Total),
		TotalItems:      param.Summary.TotalItems,
		Status:          repository.OrderStatusConfirmed,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("order id already saved, replaying original result")
		return s.replay(c, param)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			logger.Info().Msg("payment intent already saved, replaying original result")
			return s.replay(c, param)
		}
		err = fmt.Errorf("failed inserting order with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	logger.Info().Msg("inserting order items")
	args := make([]repository.InsertOrderItemParams, len(param.Items))
	for i, item := range param.Items {
		args[i] = repository.InsertOrderItemParams{
			OrderID:   inserted.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     repository.NumericFromDecimal(item.Price),
		}
	}
	count, err := s.queries.WithTx(tx).InsertOrderItems(c, args)
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("inserted order items count=%d", count)

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	items, err := s.queries.FindOrderItemsByOrderId(c, inserted.ID)
	if err != nil {
		err = fmt.Errorf("failed finding inserted order items with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	return inserted.Response(items), nil
}

func (s *OrderService) FindOrderById(c context.Context, orderId string) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyOrderID, orderId).
		Logger()

	logger.Info().Msg("finding order by id")
	order, err := s.queries.FindOrderById(c, orderId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrOrderNotFound
		}
		err = fmt.Errorf("failed finding order by id=%s with error=%w", orderId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	items, err := s.queries.FindOrderItemsByOrderId(c, orderId)
	if err != nil {
		err = fmt.Errorf("failed finding order items by orderId=%s with error=%w", orderId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order by id")

	return order.Response(items), nil
}

func (s *OrderService) FindOrders(
	c context.Context,
	param request.FindOrders,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, param.UserID.String()).
		Logger()

	logger.Info().Msg("finding orders")
	orders, err := s.queries.FindOrdersByUserId(c, param.UserID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	res := make([]response.Order, 0, len(orders))
	for _, order := range orders {
		items, err := s.queries.FindOrderItemsByOrderId(c, order.ID)
		if err != nil {
			err = fmt.Errorf("failed finding order items with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		res = append(res, order.Response(items))
	}
	return res, nil
}

// verifyPricing rejects orders whose line prices disagree with the catalog
// or whose summary does not recompute from its own lines. The client's
// arithmetic is never trusted.
func (s *OrderService) verifyPricing(c context.Context, param request.SaveOrder) error {
	productIds := make([]uuid.UUID, 0, len(param.Items))
	for _, item := range param.Items {
		productIds = append(productIds, item.ProductID)
	}
	products, err := s.queries.FindProductsByIds(c, productIds)
	if err != nil {
		return fmt.Errorf("failed finding products for pricing check with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
	}
	catalog := make(map[uuid.UUID]repository.Product, len(products))
	for _, product := range products {
		catalog[product.ID] = product
	}

	lines := make([]pricing.LineItem, 0, len(param.Items))
	for _, item := range param.Items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return fmt.Errorf("productId=%s not in catalog: %w",
				item.ProductID, inErrors.ErrPriceMismatch)
		}
		if !repository.DecimalFromNumeric(product.Price).Equal(item.Price) {
			return fmt.Errorf("productId=%s priced %s, catalog says %s: %w",
				item.ProductID, item.Price, repository.DecimalFromNumeric(product.Price),
				inErrors.ErrPriceMismatch)
		}
		lines = append(lines, pricing.LineItem{UnitPrice: item.Price, Quantity: item.Quantity})
	}

	summary := s.calc.Summarize(lines)
	if !summary.Total.Equal(param.Summary.Total) {
		return fmt.Errorf("submitted total=%s, recomputed total=%s: %w",
			param.Summary.Total, summary.Total, inErrors.ErrPriceMismatch)
	}
	return nil
}

// replay serves the idempotent resubmission path: the order is already
// saved, return it as the original call would have.
func (s *OrderService) replay(c context.Context, param request.SaveOrder) (response.Order, error) {
	order, err := s.queries.FindOrderById(c, param.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		order, err = s.queries.FindOrderByPaymentIntentId(c, param.PaymentIntentID)
	}
	if err != nil {
		return response.Order{}, fmt.Errorf("failed replaying saved order with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
	}
	if order.PaymentIntentID != param.PaymentIntentID {
		return response.Order{}, fmt.Errorf(
			"orderId=%s already exists with a different payment intent: %w",
			param.ID, inErrors.ErrPersistence)
	}
	items, err := s.queries.FindOrderItemsByOrderId(c, order.ID)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed replaying saved order items with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
	}
	return order.Response(items), nil
}
