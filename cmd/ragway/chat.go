package main

import (
	"os"

	"github.com/sandevgo/ragway/internal/service/state"
	"github.com/sandevgo/ragway/internal/transport/cli"
	"github.com/spf13/cobra"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat in the terminal",
	Long:  `Starts a line-based chat. Slash commands (/history, /clear, /provider) work as in Telegram.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cfg, flushLog, err := bootstrap(cmd.Context(), os.Stderr)
		defer flushLog()
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		selection := state.NewProviderSelection(a.defaults)
		router, err := a.commandRouter(selection)
		if err != nil {
			return err
		}

		repl, err := cli.NewReadLine(cfg.GetRuntimePath(), chatSession, a.chat, selection, router)
		if err != nil {
			return err
		}
		defer repl.Shutdown(ctx)

		return repl.Start(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", cli.DefaultSessionID, "session id")
	rootCmd.AddCommand(chatCmd)
}
