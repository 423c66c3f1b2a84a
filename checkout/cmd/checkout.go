package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/khalidaziz/dukkan/checkout/internal/client"
	"github.com/khalidaziz/dukkan/checkout/internal/controller"
	commonOtel "github.com/khalidaziz/dukkan/checkout/internal/otel"
	"github.com/khalidaziz/dukkan/checkout/internal/service"
	"github.com/khalidaziz/dukkan/checkout/internal/session"
	inCart "github.com/khalidaziz/dukkan/internal/cart"
	"github.com/khalidaziz/dukkan/internal/common"
	"github.com/khalidaziz/dukkan/internal/common/validate"
	"github.com/khalidaziz/dukkan/internal/config"
	"github.com/khalidaziz/dukkan/internal/infra"
	"github.com/khalidaziz/dukkan/internal/log"
	"github.com/khalidaziz/dukkan/internal/middleware"
	"github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/internal/payment"
	"github.com/khalidaziz/dukkan/internal/repository"
	"github.com/khalidaziz/dukkan/pricing"
)

func RunCheckoutService(c context.Context) {
	c, span := commonOtel.Tracer.Start(c, "RunCheckoutService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, common.AppCheckoutService).
		Str(log.KeyTag, "main RunCheckoutService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.Get(c, common.AppCheckoutService)
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, common.AppCheckoutService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing checkout service").Logger()
	logger.Info().Msg("initializing checkout service")
	queries := repository.New(db)
	calc := pricing.NewCalculator(infra.NewPricingRule(cfg.Pricing))
	checkoutService := service.NewCheckoutService(
		queries,
		inCart.NewStore(cache),
		session.NewStore(cache),
		payment.NewStripeGateway(cfg.Payment.SecretKey),
		client.NewOrderClient(common.UrlOrderService),
		calc,
		cfg.Payment.Currency,
		time.Duration(cfg.Payment.ConfirmTimeoutSeconds)*time.Second,
	)
	logger.Info().Msg("initialized checkout service")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(common.AppCheckoutService),
		middleware.RecoverPanic,
		middleware.Logging,
	)
	router.Handle("/metrics", promhttp.Handler())
	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.Auth(cfg.Application))
	controller.AttachCheckoutController(protected, checkoutService, validate.New())
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interruption signal, shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
