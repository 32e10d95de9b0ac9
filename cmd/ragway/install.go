package main

import (
	"github.com/sandevgo/ragway/internal/config"
	"github.com/sandevgo/ragway/internal/service/installer"
	"github.com/sandevgo/ragway/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Create the runtime directory and its .env interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := log.NewContextWithLogger(cmd.Context(), log.Options{Debug: debug || config.IsDebug()})
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			return err
		}

		logger.Info().
			Str("path", runtimePath).
			Str("provider", state.Provider.Provider).
			Str("store", state.Store).
			Msg("runtime directory initialized")
		logger.Info().Msg("Installation complete! You can now run 'ragway serve'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
