package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs the full sync on a timer, starting with an immediate run.
type Scheduler struct {
	sync     *Sync
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a Scheduler running sync every interval.
func NewScheduler(syncService *Sync, interval time.Duration) *Scheduler {
	return &Scheduler{
		sync:     syncService,
		interval: interval,
	}
}

// Start begins periodic syncing in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Go(func() {
		s.run(ctx)
	})

	slog.Info("sync scheduler started", "interval", s.interval)
}

// Stop cancels the background goroutine and waits for it to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	slog.Info("sync scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	// Sync immediately on startup
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.sync.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, ErrSyncInProgress) {
			slog.Warn("scheduled sync skipped: lease held by another run")
			return
		}
		slog.Error("scheduled sync failed", "error", err)
	}
}
