package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/publisherradar/sellersync/application/service"
	"github.com/spf13/cobra"
)

func scheduleCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full sync on a daily timer",
		Long: `Run the full sync immediately and then on a fixed interval until
interrupted.

Environment variables (prefix SELLERSYNC_):
  SYNC_INTERVAL_SECONDS   Interval between syncs (default: 86400)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, db, err := setup(ctx, envFile)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			scheduler := service.NewScheduler(newSyncService(cfg, db), cfg.SyncInterval())
			scheduler.Start(ctx)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			select {
			case <-stop:
			case <-ctx.Done():
			}

			scheduler.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}
