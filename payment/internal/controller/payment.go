package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/payment/internal/otel"
	"github.com/khalidaziz/dukkan/payment/internal/service"
	"github.com/khalidaziz/dukkan/payment/pkg/request"
)

type PaymentController struct {
	service   *service.PaymentService
	validator *validator.Validate
}

func AttachPaymentController(
	router *mux.Router,
	service *service.PaymentService,
	validator *validator.Validate,
) {
	controller := PaymentController{service: service, validator: validator}
	router.HandleFunc("/api/create-payment-intent", controller.CreateIntent).
		Methods(http.MethodPost)
}

// CreateIntent rejects bad amounts before any processor call is made.
func (ctrl *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController CreateIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController CreateIntent").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.CreateIntent{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "invalid request body",
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	if err := ctrl.validator.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w",
			errors.Join(err, inErrors.ErrValidation))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "amount must be a positive number and currency must be present",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "creating payment intent").Logger()
	logger.Info().Msg("creating payment intent")
	intent, err := ctrl.service.CreateIntent(c, reqBody)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed creating payment intent",
		})
		return
	}
	logger.Info().Str(log.KeyPaymentIntentID, intent.PaymentIntentID).
		Msg("created payment intent")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "payment intent created",
		"data":       intent,
	})
}
