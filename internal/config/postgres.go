package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ragway/pkg/log"
)

type PostgresConfig struct {
	DSN            string `env:"RAGWAY_POSTGRES_DSN,required,notEmpty"`
	MaxConns       int32  `env:"RAGWAY_POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"RAGWAY_POSTGRES_MIN_CONNS" envDefault:"0"`
	ConnectRetries int    `env:"RAGWAY_POSTGRES_CONNECT_RETRIES" envDefault:"5"`
}

func NewPostgresConfig(ctx context.Context) *PostgresConfig {
	c := &PostgresConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Postgres config")
	}
	return c
}
