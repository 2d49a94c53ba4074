package service

// scheduler.go keeps the stored data fresh without an external trigger.
// Each tick checks the last scraped date and runs a scrape only when the data
// is older than the refresh interval. Failures are logged and retried on the
// next tick.

import (
	"context"
	"log/slog"
	"time"
)

// StartRefreshScheduler checks immediately and then every interval until ctx
// is cancelled. It requires a persisting Service.
func (s *Service) StartRefreshScheduler(ctx context.Context, interval time.Duration) {
	if !s.opts.Persist {
		slog.Warn("refresh scheduler disabled: service does not persist")
		return
	}

	slog.Info("refresh scheduler started", "interval", interval)

	s.refresh(ctx, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.refresh(ctx, interval)
		}
	}
}

// refresh performs one check and, if needed, one run.
func (s *Service) refresh(ctx context.Context, interval time.Duration) {
	last, ok, err := s.repo.LastScrapedDate(ctx)
	if err != nil {
		slog.Error("refresh check failed", "error", err)
		return
	}
	if !isStale(last, ok, s.now(), interval) {
		slog.Debug("refresh skipped, data is fresh", "last_scraped", last)
		return
	}

	// A run already in flight will refresh the data; do not queue behind it.
	_, ok, err = s.tryRun(ctx)
	if !ok {
		slog.Info("refresh skipped, a run is already in progress")
		return
	}
	if err != nil {
		slog.Error("refresh run failed", "error", err)
	}
}

// isStale reports whether data last scraped at last (ok=false: never) is
// due for a refresh at now.
func isStale(last time.Time, ok bool, now time.Time, interval time.Duration) bool {
	if !ok {
		return true
	}
	return now.Sub(last) >= interval
}
