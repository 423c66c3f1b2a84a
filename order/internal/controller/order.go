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

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/common"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/order/internal/otel"
	"github.com/khalidaziz/dukkan/order/internal/service"
	"github.com/khalidaziz/dukkan/order/pkg/request"
)

type OrderController struct {
	service   *service.OrderService
	validator *validator.Validate
}

func AttachOrderController(
	router *mux.Router,
	service *service.OrderService,
	validator *validator.Validate,
) {
	controller := OrderController{service: service, validator: validator}
	router.HandleFunc("/api/orders", controller.SaveOrder).Methods(http.MethodPost)
	router.HandleFunc("/api/orders", controller.FindOrders).Methods(http.MethodGet)
	router.HandleFunc("/api/orders/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func (ctrl *OrderController) SaveOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController SaveOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController SaveOrder").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.SaveOrder{}
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
	reqBody.UserID = userId

	logger = logger.With().
		Str(log.KeyProcess, "validating request body").
		Str(log.KeyOrderID, reqBody.ID).
		Logger()
	logger.Info().Msg("validating request body")
	if err := ctrl.validator.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w",
			errors.Join(err, inErrors.ErrValidation))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "order is missing required fields",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "saving order").Logger()
	logger.Info().Msg("saving order")
	order, err := ctrl.service.SaveOrder(c, reqBody)
	if err != nil {
		writeOrderError(c, w, span, logger, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID).Msg("saved order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "order saved",
		"data":       map[string]interface{}{"success": true, "orderId": order.ID, "order": order},
	})
}

func (ctrl *OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	orderId := mux.Vars(r)["orderId"]
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrderById").
		Str(log.KeyOrderID, orderId).
		Logger()

	logger.Info().Msg("finding order by id")
	order, err := ctrl.service.FindOrderById(c, orderId)
	if err != nil {
		writeOrderError(c, w, span, logger, err)
		return
	}
	logger.Info().Msg("found order by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "order found",
		"data":       map[string]interface{}{"order": order},
	})
}

func (ctrl *OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrders").
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

	logger.Info().Str(log.KeyUserID, userId.String()).Msg("finding orders")
	orders, err := ctrl.service.FindOrders(c, request.FindOrders{UserID: userId})
	if err != nil {
		writeOrderError(c, w, span, logger, err)
		return
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "orders found",
		"data":       map[string]interface{}{"orders": orders},
	})
}

func writeOrderError(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())

	switch {
	case errors.Is(err, inErrors.ErrOrderNotFound):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    "order not found",
		})
	case errors.Is(err, inErrors.ErrPriceMismatch):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusConflict,
			"message":    "order pricing does not match the catalog",
		})
	case errors.Is(err, inErrors.ErrPersistence):
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed saving order, please contact support",
		})
	default:
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "internal server error",
		})
	}
}
