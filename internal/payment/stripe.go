package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
)

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateIntent(
	c context.Context,
	param CreateIntentParams,
) (Intent, error) {
	c, span := inOtel.Tracer.Start(c, "StripeGateway CreateIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StripeGateway CreateIntent").
		Int64(log.KeyAmount, param.Amount).
		Str(log.KeyCurrency, param.Currency).
		Logger()

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: c,
		},
		Amount:   stripe.Int64(param.Amount),
		Currency: stripe.String(strings.ToLower(param.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range param.Metadata {
		params.AddMetadata(k, v)
	}
	if param.IdempotencyKey != "" {
		params.SetIdempotencyKey(param.IdempotencyKey)
	}

	logger.Info().Msg("creating payment intent")
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		err = fmt.Errorf("failed creating payment intent with error=%w", mapProcessorError(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, err
	}
	logger.Info().Str(log.KeyPaymentIntentID, pi.ID).Msg("created payment intent")

	return mapIntent(pi), nil
}

func (g *StripeGateway) ConfirmIntent(
	c context.Context,
	param ConfirmIntentParams,
) (Intent, error) {
	c, span := inOtel.Tracer.Start(c, "StripeGateway ConfirmIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StripeGateway ConfirmIntent").
		Str(log.KeyPaymentIntentID, param.IntentID).
		Logger()

	logger.Info().Msg("confirming payment intent")
	pi, err := g.api.PaymentIntents.Confirm(
		param.IntentID,
		&stripe.PaymentIntentConfirmParams{
			Params: stripe.Params{
				Context: c,
			},
			PaymentMethod: stripe.String(param.PaymentMethod),
		},
	)
	if err != nil {
		err = fmt.Errorf("failed confirming payment intent with error=%w", mapProcessorError(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, err
	}
	logger.Info().Str(log.KeyCheckoutState, string(pi.Status)).Msg("confirmed payment intent")

	return mapIntent(pi), nil
}

func mapIntent(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}

// mapProcessorError folds processor errors into the checkout taxonomy. The
// processor's human readable message is kept for diagnostics; credentials
// never appear in it.
func mapProcessorError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard {
			return fmt.Errorf("%s: %w", stripeErr.Msg, inErrors.ErrCardDeclined)
		}
		return fmt.Errorf("%s: %w", stripeErr.Msg, inErrors.ErrGateway)
	}
	return errors.Join(err, inErrors.ErrGateway)
}
