package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/internal/payment"
	"github.com/khalidaziz/dukkan/payment/internal/otel"
	"github.com/khalidaziz/dukkan/payment/pkg/request"
	"github.com/khalidaziz/dukkan/payment/pkg/response"
	"github.com/khalidaziz/dukkan/pricing"
)

type PaymentService struct {
	gateway payment.Gateway
}

func NewPaymentService(gateway payment.Gateway) *PaymentService {
	return &PaymentService{gateway: gateway}
}

func (s *PaymentService) CreateIntent(
	c context.Context,
	param request.CreateIntent,
) (response.PaymentIntent, error) {
	c, span := otel.Tracer.Start(c, "PaymentService CreateIntent")
	defer span.End()

	currency := strings.ToLower(param.Currency)
	amountMinor := pricing.MinorUnits(param.Amount)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService CreateIntent").
		Str(log.KeyAmount, param.Amount.String()).
		Str(log.KeyCurrency, currency).
		Logger()

	if currency == "" {
		err := fmt.Errorf("currency is required with error=%w", inErrors.ErrValidation)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}

	key := IdempotencyKey(currency, amountMinor, param.Metadata)
	logger = logger.With().
		Str(log.KeyProcess, "creating payment intent").
		Str(log.KeyIdempotencyKey, key).
		Logger()
	logger.Info().Msg("creating payment intent")
	intent, err := s.gateway.CreateIntent(c, payment.CreateIntentParams{
		Amount:         amountMinor,
		Currency:       currency,
		Metadata:       param.Metadata,
		IdempotencyKey: key,
	})
	if err != nil {
		err = fmt.Errorf("failed creating payment intent with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.PaymentIntent{}, err
	}
	logger.Info().Str(log.KeyPaymentIntentID, intent.ID).Msg("created payment intent")

	return response.PaymentIntent{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          decimal.NewFromInt(intent.Amount).Div(decimal.NewFromInt(100)),
		Currency:        intent.Currency,
	}, nil
}

// IdempotencyKey derives a stable key from the charge parameters so the
// processor collapses retried creates for the same charge into one intent.
func IdempotencyKey(currency string, amountMinor int64, metadata map[string]string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%d", currency, amountMinor)
	for _, k := range sortedKeys(metadata) {
		fmt.Fprintf(h, ":%s=%s", k, metadata[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
