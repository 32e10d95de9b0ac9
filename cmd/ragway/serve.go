package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/ragway/pkg/log"
	"github.com/sandevgo/ragway/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the optional Telegram bot",
	Long:  `Opens the configured message store and serves the chat API until interrupted. The Telegram bot runs as well when ENABLE_TELEGRAM is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctx, cfg, flushLog, err := bootstrap(ctx, os.Stderr)
		defer flushLog()
		if err != nil {
			return err
		}

		logger := log.FromCtx(ctx)
		logger.Info().Str("store", cfg.Store).Msg("starting ragway")

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}

		services, err := a.services(ctx)
		if err != nil {
			a.Close(ctx)
			return err
		}

		if err := srv.Run(ctx, services, srv.DefaultShutdownTimeout); err != nil {
			return err
		}
		logger.Info().Msg("ragway has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
