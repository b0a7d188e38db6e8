package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/reading-engine-api/internal/corpus"
	"github.com/taiwoajasa245/reading-engine-api/internal/database"
	"github.com/taiwoajasa245/reading-engine-api/internal/growth"
	"github.com/taiwoajasa245/reading-engine-api/pkg/config"
	"github.com/taiwoajasa245/reading-engine-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "reading-engine",
	Short:         "Progressive reading and engagement engine",
	Long:          "reading-engine serves verse navigation, reading progress, streaks, missions and growth levels.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newRebuildSummaryCmd())
	rootCmd.AddCommand(newDevTokenCmd())
}

type app struct {
	cfg *config.Config
	log *logger.ZapLogger
	db  database.Service
}

// bootstrap loads config, builds the logger and opens the database. Callers close the app.
func bootstrap() (*app, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Errorf("failed to close database: %v", err)
	}
	_ = a.log.Sync()
}

// prepare checks the level table, migrates and loads the corpus. A corpus that fails to load stops startup.
func (a *app) prepare(ctx context.Context) (*corpus.Corpus, error) {
	if err := growth.Validate(growth.Levels); err != nil {
		return nil, fmt.Errorf("invalid growth levels: %w", err)
	}
	if err := database.Migrate(a.db); err != nil {
		return nil, err
	}

	c, err := corpus.LoadFromRepository(ctx, corpus.NewRepository(a.db))
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	a.log.Infof("corpus loaded: %d verses", c.Len())
	return c, nil
}
