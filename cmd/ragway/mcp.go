package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/ragway/internal/transport/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the generate and history tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries JSON-RPC, logs go to stderr
		ctx, cfg, flushLog, err := bootstrap(ctx, os.Stderr)
		defer flushLog()
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		return mcpserver.New(a.chat, a.defaults).Serve(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
