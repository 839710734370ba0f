package ingest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"newsbrief/app/database"
)

// FeedIngestor processes one feed end to end
type FeedIngestor interface {
	Ingest(ctx context.Context, feed *database.Feed) (int, error)
}

// Scheduler drives periodic feed refreshes. Ticker ticks and manual
// triggers funnel into the same cycle, guarded so only one cycle runs at
// a time; a trigger arriving mid-cycle is dropped, not queued.
type Scheduler struct {
	feeds    database.FeedStore
	ingestor FeedIngestor
	interval time.Duration
	running  atomic.Bool
}

// NewScheduler creates a scheduler ticking at the given interval
func NewScheduler(feeds database.FeedStore, ingestor FeedIngestor, interval time.Duration) *Scheduler {
	return &Scheduler{
		feeds:    feeds,
		ingestor: ingestor,
		interval: interval,
	}
}

// Start runs the ticker loop until the context is cancelled. An initial
// cycle runs immediately so a fresh deployment does not wait a full
// interval for its first articles.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		slog.Info("Scheduler started", "interval", s.interval)

		s.RunCycle(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Scheduler stopped")
				return
			case <-ticker.C:
				s.RunCycle(ctx)
			}
		}
	}()
}

// TriggerNow starts a cycle in the background, for the manual refresh
// endpoint. Returns immediately.
func (s *Scheduler) TriggerNow(ctx context.Context) {
	go s.RunCycle(ctx)
}

// RunCycle refreshes every due feed. Returns false when another cycle
// already holds the guard and this one was skipped.
func (s *Scheduler) RunCycle(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		slog.Info("Refresh cycle already running, skipping")
		return false
	}
	defer s.running.Store(false)

	feeds, err := s.feeds.GetFeedsDueForRefresh()
	if err != nil {
		slog.Error("Failed to query due feeds", "error", err)
		return true
	}

	if len(feeds) == 0 {
		slog.Debug("No feeds due for refresh")
		return true
	}

	slog.Info("Refresh cycle started", "due_feeds", len(feeds))

	for i := range feeds {
		feed := &feeds[i]

		count, err := s.ingestor.Ingest(ctx, feed)
		if err != nil {
			slog.Error("Feed refresh failed", "feed", feed.URL, "error", err)
		} else {
			slog.Info("Feed refreshed", "feed", feed.URL, "new_articles", count)
		}

		// The timestamp advances even after a failure so a broken feed
		// waits out its interval instead of retrying every cycle.
		if err := s.feeds.TouchLastFetched(feed.ID); err != nil {
			slog.Error("Failed to advance feed timestamp", "feed", feed.URL, "error", err)
		}
	}

	slog.Info("Refresh cycle completed", "feeds", len(feeds))

	return true
}
