package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/publisherradar/sellersync/domain/seller"
	"golang.org/x/sync/errgroup"
)

const (
	// syncLeaseName is the lease every sync run must hold before writing.
	syncLeaseName = "daily-sync"
	// syncLeaseTTL bounds how long a crashed run can block the next one.
	syncLeaseTTL = 6 * time.Hour
)

// ErrSyncInProgress indicates another run holds the sync lease.
var ErrSyncInProgress = errors.New("another sync run holds the lease")

// RegistryFetcher fetches the full registry snapshot.
type RegistryFetcher interface {
	Fetch(ctx context.Context) ([]seller.Seller, error)
}

// CacheNotifier tells the web layer to rebuild cached pages after a run.
type CacheNotifier interface {
	NotifyAll(ctx context.Context, newIDs []string)
}

// SyncResult summarizes one completed sync run. Total is the manifest's
// seller count, the figure the daily snapshot records; the stored table is
// larger since removed sellers are kept.
type SyncResult struct {
	Fetched          int
	Inserted         int64
	DeclaredDomains  int64
	UpdateCandidates int
	Removed          int
	Total            int64
	Duration         time.Duration
}

// Sync orchestrates one full registry sync: fetch, diff, insert, update,
// mark removed, snapshot, view refresh, cache notification. The phase order
// is fixed: snapshot counts must describe the write set that produced them,
// and view refresh must see the post-write state.
type Sync struct {
	registry  RegistryFetcher
	sellers   seller.Store
	domains   seller.DomainStore
	snapshots seller.SnapshotStore
	views     seller.ViewRefresher
	leases    seller.LeaseStore
	notifier  CacheNotifier
	owner     string
}

// NewSync creates a sync orchestrator.
func NewSync(
	registry RegistryFetcher,
	sellers seller.Store,
	domains seller.DomainStore,
	snapshots seller.SnapshotStore,
	views seller.ViewRefresher,
	leases seller.LeaseStore,
	notifier CacheNotifier,
) *Sync {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &Sync{
		registry:  registry,
		sellers:   sellers,
		domains:   domains,
		snapshots: snapshots,
		views:     views,
		leases:    leases,
		notifier:  notifier,
		owner:     fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}
}

// Run executes one full sync. At most one run mutates the store at a time;
// a second caller gets ErrSyncInProgress.
func (s *Sync) Run(ctx context.Context) (SyncResult, error) {
	start := time.Now()

	ok, err := s.leases.Acquire(ctx, syncLeaseName, s.owner, syncLeaseTTL)
	if err != nil {
		return SyncResult{}, fmt.Errorf("acquire sync lease: %w", err)
	}
	if !ok {
		return SyncResult{}, ErrSyncInProgress
	}
	defer func() {
		// The lease must be released even when the run's context is already
		// cancelled, or it lingers until the TTL expires.
		if err := s.leases.Release(context.WithoutCancel(ctx), syncLeaseName, s.owner); err != nil {
			slog.Warn("sync lease release failed", "error", err)
		}
	}()

	// The registry snapshot and the stored identifier set are independent
	// reads, fetched concurrently.
	var (
		fetched    []seller.Seller
		currentIDs map[string]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fetched, err = s.registry.Fetch(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		currentIDs, err = s.sellers.CurrentIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return SyncResult{}, fmt.Errorf("sync fetch phase: %w", err)
	}

	changes := seller.DetectChanges(fetched, currentIDs)
	slog.Info("registry diff computed",
		"fetched", len(fetched),
		"new", len(changes.New),
		"update_candidates", len(changes.Updated),
		"removed", len(changes.RemovedIDs),
	)

	inserted, err := s.sellers.InsertNew(ctx, changes.New)
	if err != nil {
		return SyncResult{}, err
	}

	// New sellers bring their declared domain along as a full-confidence
	// association, which later enrichment runs may confirm.
	declared, err := s.domains.ImportDeclared(ctx, changes.New, time.Now().UTC())
	if err != nil {
		return SyncResult{}, err
	}

	if err := s.sellers.UpdateChanged(ctx, changes.Updated); err != nil {
		return SyncResult{}, err
	}

	if err := s.sellers.MarkRemoved(ctx, changes.RemovedIDs); err != nil {
		return SyncResult{}, err
	}

	// The snapshot records the manifest's size for the day, not the stored
	// row count: soft-removed sellers stay in the table forever and would
	// inflate the trend.
	if err := s.snapshots.Upsert(ctx, seller.DailySnapshot{
		SnapshotDate: time.Now().UTC(),
		TotalCount:   int64(len(fetched)),
		NewCount:     inserted,
		RemovedCount: int64(len(changes.RemovedIDs)),
	}); err != nil {
		return SyncResult{}, err
	}

	s.views.RefreshAll(ctx)

	if s.notifier != nil {
		newIDs := make([]string, len(changes.New))
		for i, sl := range changes.New {
			newIDs[i] = sl.SellerID
		}
		s.notifier.NotifyAll(ctx, newIDs)
	}

	result := SyncResult{
		Fetched:          len(fetched),
		Inserted:         inserted,
		DeclaredDomains:  declared,
		UpdateCandidates: len(changes.Updated),
		Removed:          len(changes.RemovedIDs),
		Total:            int64(len(fetched)),
		Duration:         time.Since(start),
	}

	slog.Info("sync run complete",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"declared_domains", result.DeclaredDomains,
		"update_candidates", result.UpdateCandidates,
		"removed", result.Removed,
		"duration", result.Duration,
	)
	return result, nil
}
