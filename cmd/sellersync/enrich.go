package main

import (
	"fmt"

	"github.com/publisherradar/sellersync/application/service"
	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/infrastructure/adsense"
	"github.com/publisherradar/sellersync/infrastructure/persistence"
	"github.com/publisherradar/sellersync/internal/ratelimit"
	"github.com/spf13/cobra"
)

func enrichCmd() *cobra.Command {
	var (
		envFile string
		mode    string
		limit   int
		resume  bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run an enrichment pass over sellers needing domain lookup",
		Long: `Run an enrichment pass: look up each due seller against the enrichment
API, upsert discovered domain associations, and record per-seller status.

Modes:
  fill-missing     sellers never checked before (default)
  verify-existing  sellers checked before, re-verified
  all              every seller

Environment variables (prefix SELLERSYNC_):
  DB_URL                        Database URL (required)
  ADSENSE_API_URL               Enrichment API base URL (required)
  ADSENSE_API_KEY               Enrichment API bearer token (required)
  ADSENSE_REQUESTS_PER_MINUTE   Outbound request budget (default: 100)
  CHECKPOINT_PATH               Progress checkpoint file path`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selectionMode := seller.Mode(mode)
			if !seller.ValidMode(selectionMode) {
				return fmt.Errorf("invalid mode %q (want fill-missing, verify-existing, or all)", mode)
			}

			ctx := cmd.Context()
			cfg, db, err := setup(ctx, envFile)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			endpoint := cfg.Enrichment()
			limiter := ratelimit.NewLimiter(endpoint.RequestsPerMinute(), 0)
			backoff := ratelimit.NewBackoff(endpoint.InitialDelay(), endpoint.MaxDelay(), endpoint.BackoffFactor())
			client, err := adsense.NewClient(endpoint, limiter, backoff)
			if err != nil {
				return err
			}

			driver := service.NewEnrichment(
				persistence.NewSellerStore(db),
				persistence.NewDomainStore(db),
				persistence.NewViewRefresher(db),
				client,
				service.NewCheckpoint(cfg.CheckpointPath()),
			)

			_, err = driver.Run(ctx, service.EnrichmentOptions{
				Selection: seller.Selection{
					Mode:   selectionMode,
					Limit:  limit,
					Resume: resume,
				},
				DryRun: dryRun,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&mode, "mode", string(seller.ModeFillMissing), "Selection mode: fill-missing, verify-existing, all")
	cmd.Flags().IntVar(&limit, "limit", 0, "Cap on sellers processed this run (0 = no cap)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Skip sellers already terminally classified")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify without writing to the store")

	return cmd
}
