package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sandevgo/ragway/pkg/log"
	"github.com/sandevgo/ragway/pkg/retry"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type PoolOptions struct {
	MaxConns int32
	MinConns int32

	// ConnectRetries bounds the startup ping attempts; the server may still
	// be booting next to us.
	ConnectRetries int
}

// NewPool connects, validates connectivity and applies migrations. The
// caller owns the pool.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := waitReady(ctx, pool, opts.ConnectRetries); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("host", cfg.ConnConfig.Host).Msg("postgres ready")
	return pool, nil
}

func waitReady(ctx context.Context, pool *pgxpool.Pool, retries int) error {
	logger := log.FromCtx(ctx)

	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = retries
	cfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("postgres not ready")
	}

	return retry.NewRetrier(cfg).Do(ctx, func(ctx context.Context) error {
		return ping(ctx, pool, 3*time.Second)
	})
}

func ping(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	conn.Release()
	return nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.NewMigrationLogger(ctx, "postgres"))

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}
