// ABOUTME: Shared runtime wiring for CLI commands
// ABOUTME: Loads config, builds the logger and opens storage, model and profile cache
package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/trigrambot/internal/bot"
	"github.com/harper/trigrambot/internal/chain"
	"github.com/harper/trigrambot/internal/config"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/harper/trigrambot/internal/models"
	"github.com/harper/trigrambot/internal/profile"
	"github.com/harper/trigrambot/internal/storage/sqlite"
)

type app struct {
	cfg      *config.Config
	log      *log.Logger
	store    *sqlite.Storage
	model    *chain.Model
	profiles *profile.Cache
}

func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*log.Logger, error) {
	level := cfg.LogLevel
	switch {
	case quiet:
		level = "error"
	case verbose:
		level = "debug"
	}
	return logging.New(cmd.ErrOrStderr(), level)
}

// openApp wires everything a command needs. Callers must Close it.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStorage(cfg.DBPath, sqlite.Options{
		DefaultTable:   cfg.DefaultTable,
		PoolSize:       cfg.PoolSize,
		BusyRetryDelay: cfg.BusyRetryDelay,
		BusyBudget:     cfg.BusyBudget,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	profiles, err := profile.New(cmd.Context(), store.Profiles(), store.DB().DefaultTable().Name(), logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("loading profiles: %w", err)
	}

	logger.Debug("storage ready", "path", store.DB().Path(), "profiles", profiles.Len())
	return &app{
		cfg:      cfg,
		log:      logger,
		store:    store,
		model:    chain.NewModel(store.Chains(), chain.WithLogger(logger)),
		profiles: profiles,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// readTable resolves a table name for reading. Empty means the default table.
func (a *app) readTable(name string) (models.Table, error) {
	if name == "" {
		return a.store.DB().DefaultTable(), nil
	}
	return models.ParseTable(name)
}

// writeTable resolves a table name for writing, creating the table if needed.
func (a *app) writeTable(ctx context.Context, name string) (models.Table, error) {
	if name == "" {
		return a.store.DB().DefaultTable(), nil
	}
	return a.model.CreateTable(ctx, name)
}

func (a *app) service() *bot.Service {
	return bot.NewService(a.model, a.profiles, a.log)
}

func (a *app) dispatcher(proc bot.Processor, sender bot.Sender) *bot.Dispatcher {
	return bot.NewDispatcher(proc, sender, bot.DispatcherOptions{
		MaxInFlight:      a.cfg.MaxInFlight,
		RateLimit:        a.cfg.RateLimit,
		RateBurst:        a.cfg.RateBurst,
		DeliveryAttempts: a.cfg.DeliveryAttempts,
		Logger:           a.log,
	})
}
