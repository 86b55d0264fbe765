// Package main is the entry point for the sellersync CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/publisherradar/sellersync/application/service"
	"github.com/publisherradar/sellersync/infrastructure/persistence"
	"github.com/publisherradar/sellersync/infrastructure/registry"
	"github.com/publisherradar/sellersync/internal/config"
	"github.com/publisherradar/sellersync/internal/database"
	"github.com/publisherradar/sellersync/internal/log"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sellersync",
		Short: "Publisher directory sync and enrichment pipeline",
		Long:  `Sellersync ingests the advertising-network sellers manifest into a relational store, enriches it through a rate-limited lookup API, and maintains daily snapshots and aggregate views.`,
	}

	cmd.AddCommand(syncCmd())
	cmd.AddCommand(enrichCmd())
	cmd.AddCommand(scheduleCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// ErrDBURLRequired indicates the database URL is missing from configuration.
var ErrDBURLRequired = errors.New("SELLERSYNC_DB_URL is required")

// setup loads configuration, configures logging, opens the database, and
// runs migrations. Every subcommand that touches the store goes through it.
func setup(ctx context.Context, envFile string) (config.AppConfig, database.Database, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, database.Database{}, fmt.Errorf("load config: %w", err)
	}

	log.Configure(cfg.LogLevel(), log.ParseFormat(cfg.LogFormat()))

	if cfg.DBURL() == "" {
		return config.AppConfig{}, database.Database{}, ErrDBURLRequired
	}

	db, err := database.NewDatabase(ctx, cfg.DBURL())
	if err != nil {
		return config.AppConfig{}, database.Database{}, err
	}
	if err := db.ConfigurePool(cfg.DBMaxOpenConns(), cfg.DBMaxIdleConns(), cfg.DBConnMaxLifetime()); err != nil {
		_ = db.Close()
		return config.AppConfig{}, database.Database{}, err
	}
	if err := persistence.AutoMigrate(ctx, db); err != nil {
		_ = db.Close()
		return config.AppConfig{}, database.Database{}, err
	}
	return cfg, db, nil
}

// newSyncService assembles the full sync orchestrator from config.
func newSyncService(cfg config.AppConfig, db database.Database) *service.Sync {
	return service.NewSync(
		registry.NewClient(cfg.SellersJSONURL(), cfg.RegistryTimeout()),
		persistence.NewSellerStore(db),
		persistence.NewDomainStore(db),
		persistence.NewSnapshotStore(db),
		persistence.NewViewRefresher(db),
		persistence.NewLeaseStore(db),
		service.NewRevalidator(cfg.SiteURL(), cfg.RevalidateSecret()),
	)
}
