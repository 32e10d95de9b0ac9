package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sandevgo/ragway/internal/config"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/conv"
	"github.com/spf13/cobra"
)

var askFlags struct {
	session  string
	provider string
	model    string
	apiKey   string
	apiURL   string
	profile  string
	plain    bool
}

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Long:  `Sends a single message through the same path as the HTTP API: earlier exchanges of the session are used as context and both sides are stored.`,
	Args:  cobra.MinimumNArgs(1),
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

		providerCfg, err := askProviderConfig(cfg, a.defaults)
		if err != nil {
			return err
		}

		reply, err := a.chat.Send(ctx, core.GenerationRequest{
			RawMessage:     strings.Join(args, " "),
			SessionID:      askFlags.session,
			ProviderConfig: providerCfg,
		})
		if err != nil {
			var pe *core.ProviderError
			if errors.As(err, &pe) {
				return fmt.Errorf("%s: %s", pe.Kind, pe.Message)
			}
			return err
		}

		text := reply.Text
		if askFlags.plain {
			text = conv.MarkdownToText(text)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(text))
		return err
	},
}

// askProviderConfig resolves --profile, or the individual flags layered over
// the configured defaults.
func askProviderConfig(cfg *config.AppConfig, defaults core.ProviderConfig) (core.ProviderConfig, error) {
	if askFlags.profile != "" {
		profiles, err := config.LoadProfiles(cfg.GetProfilesPath())
		if err != nil {
			return core.ProviderConfig{}, err
		}
		return profiles.Get(askFlags.profile)
	}

	return defaults.Override(core.ProviderConfig{
		Provider:   core.ProviderID(strings.ToLower(askFlags.provider)),
		Model:      askFlags.model,
		Credential: askFlags.apiKey,
		Endpoint:   askFlags.apiURL,
	}), nil
}

func init() {
	f := askCmd.Flags()
	f.StringVarP(&askFlags.session, "session", "s", "", "session id (default \"default\")")
	f.StringVarP(&askFlags.provider, "provider", "p", "", "ollama, openai, anthropic, google or custom")
	f.StringVarP(&askFlags.model, "model", "m", "", "model name")
	f.StringVar(&askFlags.apiKey, "api-key", "", "provider credential")
	f.StringVar(&askFlags.apiURL, "api-url", "", "endpoint override")
	f.StringVar(&askFlags.profile, "profile", "", "named profile from profiles.toml")
	f.BoolVar(&askFlags.plain, "plain", false, "render markdown as plain text")

	askCmd.MarkFlagsMutuallyExclusive("profile", "provider")
	askCmd.MarkFlagsMutuallyExclusive("profile", "model")
	askCmd.MarkFlagsMutuallyExclusive("profile", "api-key")
	askCmd.MarkFlagsMutuallyExclusive("profile", "api-url")

	rootCmd.AddCommand(askCmd)
}
