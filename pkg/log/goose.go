package log

import (
	"context"

	"github.com/rs/zerolog"
)

// MigrationLogger satisfies goose.Logger.
type MigrationLogger struct {
	logger zerolog.Logger
}

func (m *MigrationLogger) Fatalf(format string, v ...interface{}) {
	m.logger.Fatal().Msgf(format, v...)
}

// Printf logs at debug; goose reports every applied version on each start.
func (m *MigrationLogger) Printf(format string, v ...interface{}) {
	m.logger.Debug().Msgf(format, v...)
}

func NewMigrationLogger(ctx context.Context, dialect string) *MigrationLogger {
	return &MigrationLogger{
		logger: FromCtx(ctx).With().Str("component", "migrations").Str("dialect", dialect).Logger(),
	}
}
