package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/infrastructure/adsense"
)

const (
	// enrichmentBatchSize is how many sellers are taken per batch. Pacing
	// between calls comes from the API client's rate limiter, so there is
	// no inter-batch delay.
	enrichmentBatchSize = 100
	// progressLogEvery is how often driver progress is logged.
	progressLogEvery = 1000
	// checkpointEvery is how often the checkpoint file is rewritten.
	checkpointEvery = 5000
)

// DomainFetcher is the slice of the enrichment API client the driver uses.
type DomainFetcher interface {
	GetDomains(ctx context.Context, sellerID string) (adsense.Outcome, error)
}

// EnrichmentStats accumulates the counters of one enrichment run.
type EnrichmentStats struct {
	Processed       int
	Successful      int
	NotFound        int
	Errors          int
	NewDomains      int
	VerifiedDomains int
	StartedAt       time.Time
	Elapsed         time.Duration
}

// Rate returns processed sellers per second.
func (s EnrichmentStats) Rate() float64 {
	elapsed := s.Elapsed
	if elapsed == 0 {
		elapsed = time.Since(s.StartedAt)
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Processed) / elapsed.Seconds()
}

// EnrichmentOptions configures one enrichment run.
type EnrichmentOptions struct {
	Selection seller.Selection
	// DryRun executes the full read and classify path without any store
	// or checkpoint writes, for safe estimation.
	DryRun bool
}

// Enrichment drives the per-seller domain lookup over every seller due for
// a run, applying the association upsert policy and recording per-seller
// status. Per-seller failures are counted and never abort the run.
type Enrichment struct {
	sellers    seller.Store
	domains    seller.DomainStore
	views      seller.ViewRefresher
	fetcher    DomainFetcher
	checkpoint Checkpoint
}

// NewEnrichment creates an enrichment driver.
func NewEnrichment(
	sellers seller.Store,
	domains seller.DomainStore,
	views seller.ViewRefresher,
	fetcher DomainFetcher,
	checkpoint Checkpoint,
) *Enrichment {
	return &Enrichment{
		sellers:    sellers,
		domains:    domains,
		views:      views,
		fetcher:    fetcher,
		checkpoint: checkpoint,
	}
}

// Run executes one enrichment pass. The returned stats are valid even when
// an error cut the run short.
func (e *Enrichment) Run(ctx context.Context, opts EnrichmentOptions) (EnrichmentStats, error) {
	stats := EnrichmentStats{StartedAt: time.Now()}

	due, err := e.sellers.SellersDue(ctx, opts.Selection)
	if err != nil {
		return stats, fmt.Errorf("select sellers for enrichment: %w", err)
	}
	if len(due) == 0 {
		slog.Info("enrichment: nothing to do", "mode", string(opts.Selection.Mode))
		return stats, nil
	}

	slog.Info("enrichment run started",
		"sellers", len(due),
		"mode", string(opts.Selection.Mode),
		"dry_run", opts.DryRun,
	)

	for batch := range slices.Chunk(due, enrichmentBatchSize) {
		for _, sl := range batch {
			// The run is interruptible between sellers; each seller's
			// writes are individually complete.
			if err := ctx.Err(); err != nil {
				stats.Elapsed = time.Since(stats.StartedAt)
				return stats, err
			}

			outcome, err := e.fetcher.GetDomains(ctx, sl.SellerID)
			if err != nil {
				stats.Elapsed = time.Since(stats.StartedAt)
				return stats, err
			}

			e.processOutcome(ctx, sl.SellerID, outcome, opts.DryRun, &stats)
			stats.Processed++

			if stats.Processed%progressLogEvery == 0 {
				slog.Info("enrichment progress",
					"processed", stats.Processed,
					"total", len(due),
					"successful", stats.Successful,
					"not_found", stats.NotFound,
					"errors", stats.Errors,
					"rate_per_sec", fmt.Sprintf("%.1f", stats.Rate()),
				)
			}
			if !opts.DryRun && stats.Processed%checkpointEvery == 0 {
				if err := e.checkpoint.Write(stats); err != nil {
					slog.Warn("checkpoint write failed", "error", err)
				}
			}
		}
	}

	stats.Elapsed = time.Since(stats.StartedAt)

	if !opts.DryRun {
		if err := e.checkpoint.Write(stats); err != nil {
			slog.Warn("checkpoint write failed", "error", err)
		}
		e.views.RefreshAll(ctx)
	}

	slog.Info("enrichment run complete",
		"processed", stats.Processed,
		"successful", stats.Successful,
		"not_found", stats.NotFound,
		"errors", stats.Errors,
		"new_domains", stats.NewDomains,
		"verified_domains", stats.VerifiedDomains,
		"duration", stats.Elapsed,
		"dry_run", opts.DryRun,
	)
	return stats, nil
}

func (e *Enrichment) processOutcome(ctx context.Context, sellerID string, outcome adsense.Outcome, dryRun bool, stats *EnrichmentStats) {
	now := time.Now().UTC()

	switch {
	case outcome.Kind == adsense.OutcomeSuccess && len(outcome.Domains) > 0:
		count, err := e.upsertDomains(ctx, sellerID, outcome.Domains, now, dryRun, stats)
		if err != nil {
			slog.Warn("enrichment association write failed",
				"seller_id", sellerID,
				"error", err,
			)
			stats.Errors++
			e.writeStatus(ctx, sellerID, seller.EnrichmentResult{
				Status:       seller.StatusError,
				ErrorMessage: err.Error(),
				CheckedAt:    now,
			}, dryRun)
			return
		}
		stats.Successful++
		e.writeStatus(ctx, sellerID, seller.EnrichmentResult{
			Status:      seller.StatusSuccess,
			DomainCount: count,
			CheckedAt:   now,
		}, dryRun)

	case outcome.Kind == adsense.OutcomeSuccess, outcome.Kind == adsense.OutcomeNotFound:
		// A success with zero domains reports the same way as an account
		// the API does not know about.
		stats.NotFound++
		e.writeStatus(ctx, sellerID, seller.EnrichmentResult{
			Status:       seller.StatusNotFound,
			ErrorMessage: outcome.Message,
			CheckedAt:    now,
		}, dryRun)

	default:
		stats.Errors++
		e.writeStatus(ctx, sellerID, seller.EnrichmentResult{
			Status:       seller.StatusError,
			ErrorMessage: fmt.Sprintf("status %d: %s", outcome.StatusCode, outcome.Message),
			CheckedAt:    now,
		}, dryRun)
	}
}

func (e *Enrichment) upsertDomains(ctx context.Context, sellerID string, domains []string, now time.Time, dryRun bool, stats *EnrichmentStats) (int, error) {
	count := 0
	for _, d := range domains {
		if dryRun {
			count++
			continue
		}
		write, err := e.domains.Upsert(ctx, sellerID, d, now)
		if err != nil {
			return count, err
		}
		if write == seller.AssociationNew {
			stats.NewDomains++
		} else {
			stats.VerifiedDomains++
		}
		count++
	}
	return count, nil
}

func (e *Enrichment) writeStatus(ctx context.Context, sellerID string, result seller.EnrichmentResult, dryRun bool) {
	if dryRun {
		return
	}
	if err := e.sellers.UpdateEnrichmentStatus(ctx, sellerID, result); err != nil {
		slog.Warn("enrichment status write failed",
			"seller_id", sellerID,
			"error", err,
		)
	}
}
