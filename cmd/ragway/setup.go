package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sandevgo/ragway/internal/config"
	"github.com/sandevgo/ragway/internal/core"
	"github.com/sandevgo/ragway/internal/metrics"
	"github.com/sandevgo/ragway/internal/providers/llm"
	"github.com/sandevgo/ragway/internal/service/chat"
	"github.com/sandevgo/ragway/internal/service/command"
	"github.com/sandevgo/ragway/internal/service/memory"
	"github.com/sandevgo/ragway/internal/service/orchestrator"
	"github.com/sandevgo/ragway/internal/service/state"
	"github.com/sandevgo/ragway/internal/storage/memstore"
	"github.com/sandevgo/ragway/internal/storage/postgres"
	"github.com/sandevgo/ragway/internal/storage/sqlite"
	"github.com/sandevgo/ragway/internal/transport/httpapi"
	"github.com/sandevgo/ragway/internal/transport/telegram"
	"github.com/sandevgo/ragway/pkg/log"
	"github.com/sandevgo/ragway/pkg/srv"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.AppConfig
	defaults core.ProviderConfig
	registry *llm.Registry
	chat     *chat.Service
	recorder *metrics.Recorder
	// closers run on shutdown, store last
	closers []srv.Service
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	repo, closer, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	defaults, err := config.ParseProviderDefaults()
	if err != nil {
		_ = closer.Shutdown(ctx)
		return nil, fmt.Errorf("failed to parse provider config: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewRecorder(reg)

	registry := llm.NewDefaultRegistry(&http.Client{}, cfg.RequestTimeout)
	orch := orchestrator.New(
		memory.NewRetriever(repo),
		memory.NewFormatter(cfg.ContextMaxChars),
		registry,
		orchestrator.Options{ContextLimit: cfg.ContextLimit},
	)

	return &app{
		cfg:      cfg,
		defaults: defaults.ToProviderConfig(),
		registry: registry,
		chat:     chat.NewService(repo, orch, rec, cfg.HistoryLimit),
		recorder: rec,
		closers:  []srv.Service{closer},
	}, nil
}

func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("cleanup failed")
		}
	}
}

func openStore(ctx context.Context, cfg *config.AppConfig) (core.MessageRepository, srv.Service, error) {
	logger := log.FromCtx(ctx)

	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.GetDatabasePath()).Msg("using sqlite store")
		return sqlite.NewMessagesRepo(db), srv.NewCloser(db.Close), nil

	case config.StorePostgres:
		pgCfg := config.NewPostgresConfig(ctx)
		pool, err := postgres.NewPool(ctx, pgCfg.DSN, postgres.PoolOptions{
			MaxConns:       pgCfg.MaxConns,
			MinConns:       pgCfg.MinConns,
			ConnectRetries: pgCfg.ConnectRetries,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("using postgres store")
		return postgres.NewMessagesRepo(pool), srv.NewCloser(func() error {
			pool.Close()
			return nil
		}), nil

	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store, history is lost on exit")
		store := memstore.New()
		return store, srv.NewCloser(store.Close), nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q (want %s, %s or %s)",
			cfg.Store, config.StoreSQLite, config.StorePostgres, config.StoreMemory)
	}
}

// services returns everything `serve` runs. The store closer comes first so
// it is shut down last.
func (a *app) services(ctx context.Context) ([]srv.Service, error) {
	services := append([]srv.Service{}, a.closers...)

	if a.cfg.EnableHTTP {
		h := httpapi.NewHandler(a.chat, a.defaults, a.recorder.Handler())
		services = append(services, httpapi.NewServer(ctx, a.cfg.HTTPAddr, h))
	}

	if a.cfg.IsTelegramSelected() {
		bot, err := a.telegramBot(ctx)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if len(services) == len(a.closers) {
		return nil, fmt.Errorf("no transport enabled: set ENABLE_HTTP or ENABLE_TELEGRAM")
	}
	return services, nil
}

func (a *app) telegramBot(ctx context.Context) (*telegram.Bot, error) {
	selection := state.NewProviderSelection(a.defaults)
	router, err := a.commandRouter(selection)
	if err != nil {
		return nil, err
	}
	return telegram.NewBot(ctx, config.NewTelegramConfig(ctx), a.chat, selection, router)
}

// commandRouter serves /history, /clear and /provider for interactive
// transports.
func (a *app) commandRouter(selection *state.ProviderSelection) (*command.Router, error) {
	profiles, err := config.LoadProfiles(a.cfg.GetProfilesPath())
	if err != nil {
		return nil, err
	}
	return command.New(command.NewCommands(a.chat, selection, profiles, a.registry.Providers())), nil
}
