package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/khalidaziz/dukkan/cart/cmd"
	checkoutCmd "github.com/khalidaziz/dukkan/checkout/cmd"
	"github.com/khalidaziz/dukkan/internal/common"
	"github.com/khalidaziz/dukkan/internal/log"
	orderCmd "github.com/khalidaziz/dukkan/order/cmd"
	paymentCmd "github.com/khalidaziz/dukkan/payment/cmd"
	productCmd "github.com/khalidaziz/dukkan/product/cmd"
	userCmd "github.com/khalidaziz/dukkan/user/cmd"
)

func Start() {
	logger := log.Get("/var/log/dukkan.log", os.Getenv("APP_ENV")).
		With().
		Str(log.KeyAppName, common.AppStorefront).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: "dukkan"}
	commands := []*cobra.Command{
		{
			Use:   "cart",
			Short: "Run cart service",
			Run: func(cmd *cobra.Command, args []string) {
				cartCmd.RunCartService(cmd.Context())
			},
		},
		{
			Use:   "checkout",
			Short: "Run checkout service",
			Run: func(cmd *cobra.Command, args []string) {
				checkoutCmd.RunCheckoutService(cmd.Context())
			},
		},
		{
			Use:   "order",
			Short: "Run order service",
			Run: func(cmd *cobra.Command, args []string) {
				orderCmd.RunOrderService(cmd.Context())
			},
		},
		{
			Use:   "payment",
			Short: "Run payment service",
			Run: func(cmd *cobra.Command, args []string) {
				paymentCmd.RunPaymentService(cmd.Context())
			},
		},
		{
			Use:   "product",
			Short: "Run product service",
			Run: func(cmd *cobra.Command, args []string) {
				productCmd.RunProductService(cmd.Context())
			},
		},
		{
			Use:   "user",
			Short: "Run user service",
			Run: func(cmd *cobra.Command, args []string) {
				userCmd.RunUserService(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
