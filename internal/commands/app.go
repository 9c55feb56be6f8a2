package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/LebsNeo/mrmoney-sub000/internal/categorise"
	"github.com/LebsNeo/mrmoney-sub000/internal/config"
	"github.com/LebsNeo/mrmoney-sub000/internal/dedup"
	"github.com/LebsNeo/mrmoney-sub000/internal/importer"
	"github.com/LebsNeo/mrmoney-sub000/internal/importlog"
	"github.com/LebsNeo/mrmoney-sub000/internal/ingest"
	"github.com/LebsNeo/mrmoney-sub000/internal/logger"
	"github.com/LebsNeo/mrmoney-sub000/internal/matcher"
	"github.com/LebsNeo/mrmoney-sub000/internal/ota"
	"github.com/LebsNeo/mrmoney-sub000/internal/persist"
	"github.com/LebsNeo/mrmoney-sub000/internal/store/sqlite"
)

type globalOptions struct {
	configPath string
	envFiles   []string
}

// app is everything a command needs once configuration is resolved.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	ctx   context.Context
	store *sqlite.Store
	svc   *ingest.Service
}

// loadConfig resolves the config file, dotenv files and MRMONEY_* overrides.
// Paths in the config file are relative to the file; paths in the
// environment are relative to the working directory.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if err := config.LoadEnvFiles(opts.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.configPath); err == nil {
		config.ResolvePaths(cfg, filepath.Dir(opts.configPath))
	}
	if err := config.ApplyEnv(cfg, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads configuration, opens and migrates the database and wires
// the import pipeline. Callers must call close.
func openApp(ctx context.Context, opts *globalOptions, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, logOut)
	ctx = logger.WithContext(ctx, log)

	store, err := sqlite.OpenAndMigrate(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	categoriser := categorise.Default()
	if cfg.Import.RulesPath != "" {
		rules, err := categorise.LoadFile(cfg.Import.RulesPath)
		if err != nil {
			store.Close()
			return nil, err
		}
		categoriser = categorise.New(rules)
		log.Debug().Str("path", cfg.Import.RulesPath).Int("rules", len(rules)).Msg("categorisation rules loaded")
	}

	bank := importer.NewService(importer.DefaultRegistry(), categoriser, dedup.New(store))
	svc := ingest.New(bank, ota.DefaultRegistry(),
		matcher.New(store, cfg.Import.BookingCacheTTL),
		persist.New(store, store),
		ingest.WithRecorder(importlog.New(cfg.Import.LogDir)))

	return &app{cfg: cfg, log: log, ctx: ctx, store: store, svc: svc}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing database")
	}
}

func requireFlag(name, value string) error {
	if value == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
