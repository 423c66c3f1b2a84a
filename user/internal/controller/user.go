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
	"github.com/khalidaziz/dukkan/user/internal/otel"
	"github.com/khalidaziz/dukkan/user/internal/service"
	"github.com/khalidaziz/dukkan/user/pkg/request"
)

type UserController struct {
	service   *service.UserService
	validator *validator.Validate
}

func AttachUserController(
	router *mux.Router,
	service *service.UserService,
	validator *validator.Validate,
) {
	controller := UserController{service: service, validator: validator}
	router.HandleFunc("/api/users/register", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/users/login", controller.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{userId}", controller.FindUserById).Methods(http.MethodGet)
}

func (ctrl *UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController Register").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.Register{}
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
			"message":    "registration is missing required fields",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	user, err := ctrl.service.Register(c, reqBody)
	if err != nil {
		writeUserError(c, w, span, logger, err)
		return
	}
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("registered user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "user registered",
		"data":       map[string]interface{}{"user": user},
	})
}

func (ctrl *UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.Login{}
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
			"message":    "login is missing required fields",
			"errors":     inHttp.ValidationErrors(err),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "logging in user").Logger()
	logger.Info().Msg("logging in user")
	login, err := ctrl.service.Login(c, reqBody)
	if err != nil {
		writeUserError(c, w, span, logger, err)
		return
	}
	logger.Info().Str(log.KeyUserID, login.User.ID.String()).Msg("logged in user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "login succeeded",
		"data":       login,
	})
}

func (ctrl *UserController) FindUserById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController FindUserById").
		Logger()

	userId, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		err = fmt.Errorf("failed parsing userId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "invalid userId",
		})
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger.Info().Msg("finding user by id")
	user, err := ctrl.service.FindUserById(c, userId)
	if errors.Is(err, inErrors.ErrUserNotFound) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusNotFound,
			"message":    "user not found",
		})
		return
	}
	if err != nil {
		writeUserError(c, w, span, logger, err)
		return
	}
	logger.Info().Msg("found user by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "user found",
		"data":       map[string]interface{}{"user": user},
	})
}

func writeUserError(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
	logger zerolog.Logger,
	err error,
) {
	inOtel.RecordError(err, span)
	logger.Error().Err(err).Msg(err.Error())

	switch {
	case errors.Is(err, inErrors.ErrUserNotFound), errors.Is(err, inErrors.ErrPasswordMismatch):
		// same response either way, an attacker learns nothing about which
		// part was wrong
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    "invalid email or password",
		})
	default:
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "internal server error",
		})
	}
}
