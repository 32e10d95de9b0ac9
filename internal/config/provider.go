package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/pkg/log"
)

// ProviderDefaults is what a calling layer falls back to when a request
// carries no provider config. The generation core never reads it.
type ProviderDefaults struct {
	Provider string `env:"RAGWAY_PROVIDER" envDefault:"ollama"`
	Model    string `env:"RAGWAY_MODEL" envDefault:"llama2"`
	APIKey   string `env:"RAGWAY_API_KEY"`
	APIURL   string `env:"RAGWAY_API_URL"`
}

func NewProviderDefaults(ctx context.Context) *ProviderDefaults {
	c, err := ParseProviderDefaults()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse provider config")
	}
	return c
}

func ParseProviderDefaults() (*ProviderDefaults, error) {
	c := &ProviderDefaults{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c ProviderDefaults) ToProviderConfig() core.ProviderConfig {
	return core.ProviderConfig{
		Provider:   core.ProviderID(c.Provider),
		Model:      c.Model,
		Credential: c.APIKey,
		Endpoint:   c.APIURL,
	}
}
