package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/khalidaziz/dukkan/checkout/internal/otel"
	"github.com/khalidaziz/dukkan/checkout/internal/session"
	"github.com/khalidaziz/dukkan/checkout/pkg/request"
	"github.com/khalidaziz/dukkan/checkout/pkg/response"
	inCart "github.com/khalidaziz/dukkan/internal/cart"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/internal/payment"
	"github.com/khalidaziz/dukkan/internal/repository"
	orderRequest "github.com/khalidaziz/dukkan/order/pkg/request"
	orderResponse "github.com/khalidaziz/dukkan/order/pkg/response"
	"github.com/khalidaziz/dukkan/pricing"
)

// OrderSaver persists a confirmed order. In production it is the order
// service reached over HTTP; tests substitute a fake.
type OrderSaver interface {
	SaveOrder(c context.Context, param orderRequest.SaveOrder) (orderResponse.Order, error)
}

type CheckoutService struct {
	queries        *repository.Queries
	carts          *inCart.Store
	sessions       *session.Store
	gateway        payment.Gateway
	saver          OrderSaver
	calc           pricing.Calculator
	currency       string
	confirmTimeout time.Duration
}

func NewCheckoutService(
	queries *repository.Queries,
	carts *inCart.Store,
	sessions *session.Store,
	gateway payment.Gateway,
	saver OrderSaver,
	calc pricing.Calculator,
	currency string,
	confirmTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		queries:        queries,
		carts:          carts,
		sessions:       sessions,
		gateway:        gateway,
		saver:          saver,
		calc:           calc,
		currency:       currency,
		confirmTimeout: confirmTimeout,
	}
}

// PlaceOrder drives one checkout attempt end to end: recompute the cart
// server-side, ensure a payment intent, confirm the card, persist the order
// and clear the cart. Every failure leaves the session in a state the next
// submission can recover from, and the cart is only cleared after the order
// is durably saved.
func (s *CheckoutService) PlaceOrder(
	c context.Context,
	userId uuid.UUID,
	param request.PlaceOrder,
) (response.PlacedOrder, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService PlaceOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService PlaceOrder").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	cart, err := s.carts.Load(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	if cart.Empty() {
		err = fmt.Errorf("nothing to checkout with error=%w", inErrors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	logger.Info().Int(log.KeyCartItems, len(cart.Items)).Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "recomputing summary").Logger()
	logger.Info().Msg("recomputing summary from catalog")
	items, summary, err := s.recompute(c, cart)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	if !summary.Total.Equal(param.ExpectedTotal) {
		err = fmt.Errorf("displayed total=%s, recomputed total=%s: %w",
			param.ExpectedTotal, summary.Total, inErrors.ErrPriceMismatch)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	logger.Info().Str(log.KeyAmount, summary.Total.String()).Msg("recomputed summary")

	sess, err := s.loadSession(c, userId)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	logger = logger.With().
		Str(log.KeyCheckoutID, sess.ID).
		Str(log.KeyCheckoutState, sess.State.String()).
		Logger()

	// a charge captured on an earlier attempt must never reach the processor
	// again: the processor replays the original create response, not the
	// intent's current status, and confirming a succeeded intent is rejected
	if sess.Paid && sess.IntentID != "" {
		logger = logger.With().Str(log.KeyProcess, "resuming captured payment").Logger()
		logger.Info().
			Str(log.KeyPaymentIntentID, sess.IntentID).
			Msg("payment already captured, re-submitting order")
	} else {
		logger = logger.With().Str(log.KeyProcess, "ensuring payment intent").Logger()
		logger.Info().Msg("ensuring payment intent")
		intent, err := s.ensureIntent(c, &sess, cart, summary)
		if err != nil {
			s.fail(c, &sess, err, logger)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.PlacedOrder{}, err
		}
		logger.Info().Str(log.KeyPaymentIntentID, intent.ID).Msg("ensured payment intent")

		logger = logger.With().Str(log.KeyProcess, "confirming payment").Logger()
		logger.Info().Msg("confirming payment")
		confirmCtx, cancel := context.WithTimeout(c, s.confirmTimeout)
		intent, err = s.gateway.ConfirmIntent(confirmCtx, payment.ConfirmIntentParams{
			IntentID:      sess.IntentID,
			PaymentMethod: param.PaymentMethod,
		})
		cancel()
		if err != nil {
			s.fail(c, &sess, err, logger)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.PlacedOrder{}, err
		}
		if intent.Status != payment.IntentStatusSucceeded {
			err = fmt.Errorf("payment intent status=%s: %w",
				intent.Status, inErrors.ErrCardDeclined)
			s.fail(c, &sess, err, logger)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.PlacedOrder{}, err
		}
		sess.Paid = true
		logger.Info().Msg("confirmed payment")
	}

	logger = logger.With().Str(log.KeyProcess, "saving order").Logger()
	if err := sess.Transition(session.StateSubmitting); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	// secret is spent once the card is confirmed
	sess.ClientSecret = ""
	if sess.OrderID == "" {
		sess.OrderID = fmt.Sprintf("ORDER-%d", time.Now().UnixMilli())
	}
	if err := s.sessions.Save(c, sess); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}

	logger.Info().Str(log.KeyOrderID, sess.OrderID).Msg("saving order")
	order, err := s.saver.SaveOrder(c, orderRequest.SaveOrder{
		ID:              sess.OrderID,
		PaymentIntentID: sess.IntentID,
		UserID:          userId,
		Items:           items,
		Customer:        param.Customer,
		Shipping:        param.Shipping,
		Summary: orderRequest.Summary{
			Subtotal:   summary.Subtotal,
			Shipping:   summary.ShippingFee,
			Tax:        summary.Tax,
			Total:      summary.Total,
			TotalItems: summary.TotalItems,
		},
		Timestamp: time.Now(),
	})
	if err != nil {
		err = fmt.Errorf("failed saving order with error=%w",
			errors.Join(err, inErrors.ErrPersistence))
		s.fail(c, &sess, err, logger)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PlacedOrder{}, err
	}
	logger.Info().Str(log.KeyOrderID, order.ID).Msg("saved order")

	// the cart is only touched after the order is durably saved
	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart quantities")
	if _, err := s.carts.Zero(c, userId); err != nil {
		// order is saved; a stale cart is an inconvenience, not a failure
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("cleared cart quantities")
	}

	if err := sess.Transition(session.StateConfirmed); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	if err := s.sessions.Delete(c, userId); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}

	return response.PlacedOrder{
		Success: true,
		OrderID: order.ID,
		State:   sess.State.String(),
	}, nil
}

// FindSession exposes the in-flight checkout attempt, if any.
func (s *CheckoutService) FindSession(
	c context.Context,
	userId uuid.UUID,
) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService FindSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService FindSession").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger.Info().Msg("finding checkout session")
	sess, err := s.sessions.Load(c, userId)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Info().Str(log.KeyCheckoutState, sess.State.String()).Msg("found checkout session")

	return response.Checkout{
		ID:            sess.ID,
		UserID:        sess.UserID,
		State:         sess.State.String(),
		Summary:       sess.Summary,
		FailureReason: sess.FailureReason,
		UpdatedAt:     sess.UpdatedAt,
	}, nil
}

// recompute re-prices every purchasable line from the catalog and returns
// the derived order items plus summary. Stored cart prices are never
// trusted for checkout.
func (s *CheckoutService) recompute(
	c context.Context,
	cart inCart.Cart,
) ([]orderRequest.OrderItem, pricing.Summary, error) {
	productIds := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Quantity > 0 {
			productIds = append(productIds, item.ProductID)
		}
	}

	products, err := s.queries.FindProductsByIds(c, productIds)
	if err != nil {
		return nil, pricing.Summary{}, fmt.Errorf(
			"failed finding cart products with error=%w", err)
	}
	catalog := make(map[uuid.UUID]repository.Product, len(products))
	for _, product := range products {
		catalog[product.ID] = product
	}

	items := make([]orderRequest.OrderItem, 0, len(productIds))
	lines := make([]pricing.LineItem, 0, len(productIds))
	for _, item := range cart.Items {
		if item.Quantity <= 0 {
			continue
		}
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, pricing.Summary{}, fmt.Errorf(
				"productId=%s no longer in catalog: %w",
				item.ProductID, inErrors.ErrProductNotFound)
		}
		price := repository.DecimalFromNumeric(product.Price)
		items = append(items, orderRequest.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
		lines = append(lines, pricing.LineItem{UnitPrice: price, Quantity: item.Quantity})
	}

	return items, s.calc.Summarize(lines), nil
}

// loadSession returns the in-flight attempt, or starts a fresh one. A failed
// unpaid attempt walks back to form entry; a failed attempt whose charge
// already captured is left in place so the retry resumes at submission.
func (s *CheckoutService) loadSession(
	c context.Context,
	userId uuid.UUID,
) (session.Session, error) {
	sess, err := s.sessions.Load(c, userId)
	if errors.Is(err, session.ErrNotFound) {
		return session.New(userId), nil
	}
	if err != nil {
		return session.Session{}, err
	}
	if sess.State == session.StateFailed && !sess.Paid {
		if err := sess.Transition(session.StateFormEntry); err != nil {
			return session.Session{}, err
		}
	}
	return sess, nil
}

// ensureIntent reuses the session's intent when the amount is unchanged,
// otherwise discards the stale reference and creates a new one. The
// idempotency key is derived from the charge itself so processor-side
// retries collapse into a single intent.
func (s *CheckoutService) ensureIntent(
	c context.Context,
	sess *session.Session,
	cart inCart.Cart,
	summary pricing.Summary,
) (payment.Intent, error) {
	amountMinor := pricing.MinorUnits(summary.Total)

	if sess.State == session.StateAwaitingConfirmation && sess.IntentID != "" {
		if sess.AmountMinor == amountMinor {
			return payment.Intent{
				ID:           sess.IntentID,
				ClientSecret: sess.ClientSecret,
				Amount:       sess.AmountMinor,
				Currency:     s.currency,
				Status:       payment.IntentStatusRequiresConfirmation,
			}, nil
		}
		// amount changed under the intent, walk back and re-create
		if err := sess.Transition(session.StateFormEntry); err != nil {
			return payment.Intent{}, err
		}
		sess.IntentID = ""
		sess.ClientSecret = ""
		sess.OrderID = ""
	}

	if err := sess.Transition(session.StateAwaitingIntent); err != nil {
		return payment.Intent{}, err
	}

	intent, err := s.gateway.CreateIntent(c, payment.CreateIntentParams{
		Amount:   amountMinor,
		Currency: s.currency,
		Metadata: map[string]string{"userId": sess.UserID.String(), "checkoutId": sess.ID},
		IdempotencyKey: intentIdempotencyKey(sess.UserID, cart, amountMinor),
	})
	if err != nil {
		return payment.Intent{}, fmt.Errorf("failed creating payment intent with error=%w", err)
	}

	if err := sess.Transition(session.StateAwaitingConfirmation); err != nil {
		return payment.Intent{}, err
	}
	sess.IntentID = intent.ID
	sess.ClientSecret = intent.ClientSecret
	sess.AmountMinor = intent.Amount
	sess.Summary = summary
	if err := s.sessions.Save(c, *sess); err != nil {
		return payment.Intent{}, err
	}
	return intent, nil
}

// fail parks the session in the failed state with the reason kept for the
// customer; the next submission recovers through form entry. The cart is
// deliberately left untouched.
func (s *CheckoutService) fail(
	c context.Context,
	sess *session.Session,
	cause error,
	logger zerolog.Logger,
) {
	if sess.State == session.StateFailed || sess.State == session.StateFormEntry {
		sess.FailureReason = cause.Error()
	} else if err := sess.Transition(session.StateFailed); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return
	} else {
		sess.FailureReason = cause.Error()
	}
	if err := s.sessions.Save(c, *sess); err != nil {
		logger.Error().Err(err).Msg(err.Error())
	}
}

// intentIdempotencyKey hashes who is paying and for what, so retrying the
// same checkout never mints a second intent.
func intentIdempotencyKey(userId uuid.UUID, cart inCart.Cart, amountMinor int64) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d", userId.String(), amountMinor)
	for _, item := range cart.Items {
		if item.Quantity > 0 {
			fmt.Fprintf(h, ":%s=%d@%s", item.ProductID, item.Quantity, item.UnitPrice)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
