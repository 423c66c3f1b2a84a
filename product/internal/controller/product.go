package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/product/internal/otel"
	"github.com/khalidaziz/dukkan/product/internal/service"
	"github.com/khalidaziz/dukkan/product/pkg/request"
)

type ProductController struct {
	service   *service.ProductService
	validator *validator.Validate
}

// AttachProductController registers catalog reads on the public router and
// catalog mutations on the authenticated one.
func AttachProductController(
	public *mux.Router,
	protected *mux.Router,
	service *service.ProductService,
	validator *validator.Validate,
) {
	controller := ProductController{service: service, validator: validator}
	public.HandleFunc("/api/products", controller.FindProducts).Methods(http.MethodGet)
	public.HandleFunc("/api/products/{productId}", controller.FindProductById).
		Methods(http.MethodGet)
	protected.HandleFunc("/api/products", controller.InsertProduct).Methods(http.MethodPost)
	protected.HandleFunc("/api/products/{productId}", controller.UpdateProduct).
		Methods(http.MethodPut)
	protected.HandleFunc("/api/products/{productId}", controller.DeleteProduct).
		Methods(http.MethodDelete)
}

func (ctrl *ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.InsertProduct{}
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
			"message":    "product is missing required fields",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	product, err := ctrl.service.InsertProduct(c, reqBody)
	if err != nil {
		writeProductError(c, w, span, logger, err)
		return
	}
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "product inserted",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController UpdateProduct").
		Logger()

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "invalid productId",
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	reqBody := request.UpdateProduct{}
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

	if err := ctrl.validator.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w",
			errors.Join(err, inErrors.ErrValidation))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "product is missing required fields",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}

	product, err := ctrl.service.UpdateProduct(c, productId, reqBody)
	if err != nil {
		writeProductError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product updated",
		"data":       map[string]interface{}{"product": product},
	})
}

func (ctrl *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController DeleteProduct").
		Logger()

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "invalid productId",
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	if err := ctrl.service.DeleteProduct(c, productId); err != nil {
		writeProductError(c, w, span, logger, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product deleted",
	})
}

func (ctrl *ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	logger.Info().Msg("finding products")
	products, err := ctrl.service.FindProducts(c)
	if err != nil {
		writeProductError(c, w, span, logger, err)
		return
	}
	logger.Info().Msgf("found products count=%d", len(products))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "products found",
		"data":       map[string]interface{}{"products": products},
	})
}

func (ctrl *ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "invalid productId",
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger.Info().Msg("finding product by id")
	product, err := ctrl.service.FindProductById(c, productId)
	if err != nil {
		writeProductError(c, w, span, logger, err)
		return
	}
	logger.Info().Msg("found product by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "product found",
		"data":       map[string]interface{}{"product": product},
	})
}

func writeProductError(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())

	if errors.Is(err, inErrors.ErrProductNotFound) {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    "product not found",
		})
		return
	}
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": http.StatusInternalServerError,
		"message":    "internal server error",
	})
}
