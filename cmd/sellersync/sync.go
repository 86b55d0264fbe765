package main

import (
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one full registry sync",
		Long: `Run one full registry sync: fetch the sellers manifest, diff it against
the store, apply inserts/updates/removals, write the daily snapshot,
refresh the aggregate views, and notify the web layer.

Environment variables (prefix SELLERSYNC_):
  DB_URL                Database URL (postgres://... or sqlite:///path, required)
  SELLERS_JSON_URL      Registry manifest URL
  REGISTRY_TIMEOUT      Manifest download timeout in seconds (default: 300)
  SITE_URL              Web layer base URL for cache revalidation
  REVALIDATE_SECRET     Shared secret for cache revalidation
  LOG_LEVEL             DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT            pretty, json (default: pretty)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, db, err := setup(ctx, envFile)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			_, err = newSyncService(cfg, db).Run(ctx)
			return err
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}
