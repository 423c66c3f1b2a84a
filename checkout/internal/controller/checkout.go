package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/khalidaziz/dukkan/checkout/internal/otel"
	"github.com/khalidaziz/dukkan/checkout/internal/service"
	"github.com/khalidaziz/dukkan/checkout/internal/session"
	"github.com/khalidaziz/dukkan/checkout/pkg/request"
	"github.com/khalidaziz/dukkan/internal/common"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
)

type CheckoutController struct {
	service   *service.CheckoutService
	validator *validator.Validate
}

func AttachCheckoutController(
	router *mux.Router,
	service *service.CheckoutService,
	validator *validator.Validate,
) {
	controller := CheckoutController{service: service, validator: validator}
	router.HandleFunc("/api/checkout", controller.PlaceOrder).Methods(http.MethodPost)
	router.HandleFunc("/api/checkout", controller.FindSession).Methods(http.MethodGet)
}

func (ctrl *CheckoutController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController PlaceOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController PlaceOrder").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    "unauthorized",
		})
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.PlaceOrder{}
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
	logger.Info().Dict(log.KeyRequestBody, zerolog.Dict().EmbedObject(reqBody)).
		Msg("validating request body")
	if err := ctrl.validator.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w",
			errors.Join(err, inErrors.ErrValidation))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "checkout form is missing required fields",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "placing order").Logger()
	logger.Info().Msg("placing order")
	placed, err := ctrl.service.PlaceOrder(c, userId, reqBody)
	if err != nil {
		writeCheckoutError(c, w, span, logger, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, placed.OrderID).Msg("placed order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "order placed",
		"data":       placed,
	})
}

func (ctrl *CheckoutController) FindSession(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController FindSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController FindSession").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    "unauthorized",
		})
		return
	}

	logger.Info().Msg("finding checkout session")
	checkout, err := ctrl.service.FindSession(c, userId)
	if err != nil {
		writeCheckoutError(c, w, span, logger, err)
		return
	}
	logger.Info().Msg("found checkout session")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "checkout session found",
		"data":       checkout,
	})
}

func writeCheckoutError(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())

	switch {
	case errors.Is(err, inErrors.ErrEmptyCart):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusConflict,
			"message":    "cart is empty, nothing to checkout",
		})
	case errors.Is(err, inErrors.ErrPriceMismatch):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusConflict,
			"message":    "cart pricing changed, review the updated total",
		})
	case errors.Is(err, inErrors.ErrCardDeclined):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusPaymentRequired,
			"message":    "card was declined, try another payment method",
		})
	case errors.Is(err, inErrors.ErrProductNotFound):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusConflict,
			"message":    "a cart item is no longer available",
		})
	case errors.Is(err, inErrors.ErrPersistence):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "payment succeeded but the order could not be saved, please contact support",
		})
	case errors.Is(err, session.ErrNotFound):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    "no checkout in progress",
		})
	default:
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "internal server error",
		})
	}
}
