package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/ragway/pkg/log"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type AppConfig struct {
	RuntimePath string `env:"RAGWAY_RUNTIME_PATH" envDefault:".ragway"`
	Store       string `env:"RAGWAY_STORE" envDefault:"sqlite"`

	// Transport Flags
	EnableHTTP     bool   `env:"ENABLE_HTTP" envDefault:"true"`
	HTTPAddr       string `env:"RAGWAY_HTTP_ADDR" envDefault:":8080"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`

	// Context Management
	ContextLimit    int           `env:"RAGWAY_CONTEXT_LIMIT" envDefault:"5"`
	ContextMaxChars int           `env:"RAGWAY_CONTEXT_MAX_CHARS" envDefault:"2000"`
	HistoryLimit    int           `env:"RAGWAY_HISTORY_LIMIT" envDefault:"50"`
	RequestTimeout  time.Duration `env:"RAGWAY_REQUEST_TIMEOUT" envDefault:"60s"`

	LogJSON bool `env:"RAGWAY_LOG_JSON" envDefault:"false"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "ragway.db")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c AppConfig) GetProfilesPath() string {
	return filepath.Join(c.RuntimePath, "profiles.toml")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
