package installer

import (
	"fmt"
	"strings"

	"github.com/sandevgo/ragway/internal/config"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/env"
)

// InstallState accumulates wizard answers until they are rendered to .env.
type InstallState struct {
	Provider config.ProviderDefaults
	Store    string
	Postgres config.PostgresConfig
	Telegram *config.TelegramConfig
}

func NewInstallState() *InstallState {
	return &InstallState{
		Provider: config.ProviderDefaults{Provider: string(core.ProviderOllama)},
		Store:    config.StoreSQLite,
	}
}

func (s *InstallState) providerID() core.ProviderID {
	return core.ProviderID(strings.ToLower(s.Provider.Provider))
}

// RenderEnv produces the .env contents for the collected answers.
func (s *InstallState) RenderEnv() (string, error) {
	app := config.AppConfig{Store: s.Store, EnableTelegram: s.Telegram != nil}
	parts := []any{&app, &s.Provider}
	if s.Store == config.StorePostgres {
		parts = append(parts, &s.Postgres)
	}
	if s.Telegram != nil {
		parts = append(parts, s.Telegram)
	}

	var sb strings.Builder
	for _, p := range parts {
		out, err := env.MarshalEnv(p)
		if err != nil {
			return "", fmt.Errorf("failed to render %T: %w", p, err)
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}
