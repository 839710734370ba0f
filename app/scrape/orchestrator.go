package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newsbrief/app/cfg"
)

// Orchestrator fetches batches of article pages through a single headless
// browser session and runs content extraction on each.
type Orchestrator struct {
	newSession sessionFactory
	delay      time.Duration
}

// NewOrchestrator creates an orchestrator backed by headless Chrome
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		newSession: newChromeSession,
		delay:      time.Duration(cfg.Get().ScrapeDelay) * time.Second,
	}
}

// ScrapeAll processes the URLs sequentially through one shared browser
// session and returns exactly one result per input URL, in input order.
// Individual page failures are recorded in their result; if the session
// itself cannot be created, every URL gets the same error record.
func (o *Orchestrator) ScrapeAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	batchID := uuid.NewString()
	slog.Info("Starting scrape batch", "batch_id", batchID, "url_count", len(urls))

	session, err := o.newSession(ctx)
	if err != nil {
		slog.Error("Browser session unavailable", "batch_id", batchID, "error", err)
		msg := fmt.Sprintf("browser session failed: %v", err)
		for i, pageURL := range urls {
			results[i] = Result{URL: pageURL, Err: msg}
		}
		return results
	}
	defer session.Close()

	for i, pageURL := range urls {
		if i > 0 && o.delay > 0 {
			select {
			case <-ctx.Done():
				msg := fmt.Sprintf("scrape cancelled: %v", ctx.Err())
				for j := i; j < len(urls); j++ {
					results[j] = Result{URL: urls[j], Err: msg}
				}
				return results
			case <-time.After(o.delay):
			}
		}

		html, err := session.Fetch(pageURL)
		if err != nil {
			slog.Warn("Page fetch failed", "batch_id", batchID, "url", pageURL, "error", err)
			results[i] = Result{URL: pageURL, Err: fmt.Sprintf("scrape failed: %v", err)}
			continue
		}

		results[i] = ExtractContent(pageURL, html)
		if results[i].OK() {
			slog.Debug("Page scraped", "batch_id", batchID, "url", pageURL, "words", results[i].WordCount)
		} else {
			slog.Warn("Extraction failed", "batch_id", batchID, "url", pageURL, "error", results[i].Err)
		}
	}

	slog.Info("Scrape batch completed", "batch_id", batchID, "url_count", len(urls))

	return results
}

// ScrapeOne fetches a single URL with its own short-lived session
func (o *Orchestrator) ScrapeOne(ctx context.Context, pageURL string) Result {
	return o.ScrapeAll(ctx, []string{pageURL})[0]
}
