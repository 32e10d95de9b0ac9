package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sandevgo/ragway/internal/config"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/log"
	"github.com/spf13/cobra"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:     "ragway",
	Short:   core.RagwayName + ": text generation gateway with conversational context",
	Long:    `Ragway forwards chat messages to Ollama, OpenAI, Anthropic, Google or any compatible endpoint, grounding each prompt on earlier exchanges of the same session.`,
	Version: core.RagwayVersion,
}

func Execute() {
	customizeHelp(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

// bootstrap loads <runtime>/.env and the app config, then attaches a logger
// writing to out.
func bootstrap(ctx context.Context, out io.Writer) (context.Context, *config.AppConfig, func(), error) {
	if err := config.LoadEnv(ctx, config.GetRuntimePath()); err != nil {
		return ctx, nil, func() {}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.ParseAppConfig()
	if err != nil {
		return ctx, nil, func() {}, fmt.Errorf("failed to parse config: %w", err)
	}

	ctx, flush := log.NewContextWithLogger(ctx, log.Options{
		Debug: debug || config.IsDebug(),
		JSON:  cfg.LogJSON,
		Out:   out,
	})
	return ctx, cfg, flush, nil
}

func customizeHelp(cmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return titleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return usageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return flagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return descStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces | StyleFlag}}
{{end}}{{if .HasAvailableInheritedFlags}}{{StyleTitle "GLOBAL FLAGS"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces | StyleFlag}}
{{end}}
`
	cmd.SetHelpTemplate(template)
}
