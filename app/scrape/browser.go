package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"newsbrief/app/cfg"
)

// browserSession is one live headless-browser instance shared by a batch
// of page fetches.
type browserSession interface {
	Fetch(pageURL string) (string, error)
	Close()
}

// sessionFactory creates a browser session for a batch. Injected into the
// orchestrator so session startup failures can be exercised in tests.
type sessionFactory func(ctx context.Context) (browserSession, error)

type chromeSession struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// newChromeSession starts a headless Chrome instance. The browser is
// launched eagerly so a broken environment fails here rather than on the
// first page fetch.
func newChromeSession(ctx context.Context) (browserSession, error) {
	c := cfg.Get()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &chromeSession{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       time.Duration(c.ScrapeTimeout) * time.Second,
	}, nil
}

// Fetch navigates a fresh tab to the URL and returns the rendered HTML
// after the DOM is ready and scripts have had a moment to settle.
func (s *chromeSession) Fetch(pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("page navigation failed: %w", err)
	}

	return html, nil
}

func (s *chromeSession) Close() {
	s.browserCancel()
	s.allocCancel()
}
