package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/khalidaziz/dukkan/cart/internal/otel"
	"github.com/khalidaziz/dukkan/cart/internal/service"
	"github.com/khalidaziz/dukkan/cart/pkg/request"
	"github.com/khalidaziz/dukkan/internal/common"
	"github.com/khalidaziz/dukkan/internal/common/validate"
	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(router *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	r := router.PathPrefix("/api/cart").Subrouter()
	r.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	r.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	r.HandleFunc("/items/{productId}", controller.UpdateQuantity).Methods(http.MethodPut)
	r.HandleFunc("/items/{productId}", controller.RemoveItem).Methods(http.MethodDelete)
}

func (ct *CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindCart").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	c = logger.WithContext(c)
	cart, err := ct.service.FindCart(c, userId)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found cart",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ct *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	param := request.AddItem{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "request body is invalid",
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := validate.New().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "request body is invalid",
		})
		return
	}

	c = logger.WithContext(c)
	cart, err := ct.service.AddItem(c, userId, param)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "added item to cart",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ct *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateQuantity").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	param := request.UpdateQuantity{}
	if err := json.NewDecoder(r.Body).Decode(&param); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "request body is invalid",
		})
		return
	}
	if err := validate.New().StructCtx(c, param); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "request body is invalid",
		})
		return
	}

	c = logger.WithContext(c)
	cart, err := ct.service.UpdateQuantity(c, userId, productId, param.Quantity)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated item quantity",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ct *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	c = logger.WithContext(c)
	cart, err := ct.service.RemoveItem(c, userId, productId)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "removed item from cart",
		"data":       map[string]interface{}{"cart": cart},
	})
}

func (ct *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	c = logger.WithContext(c)
	if err := ct.service.ClearCart(c, userId); err != nil {
		writeCartError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cleared cart",
	})
}

func writeCartError(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())

	statusCode := http.StatusInternalServerError
	switch {
	case errors.Is(err, inErrors.ErrProductNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, inErrors.ErrOutOfStock):
		statusCode = http.StatusConflict
	case errors.Is(err, inErrors.ErrEmptySubject):
		statusCode = http.StatusUnauthorized
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"message":    err.Error(),
	})
}
