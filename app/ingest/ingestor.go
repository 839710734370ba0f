package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/scrape"
)

// BatchScraper fetches a batch of article pages, one result per URL
type BatchScraper interface {
	ScrapeAll(ctx context.Context, urls []string) []scrape.Result
}

// Ingestor pulls a feed, scrapes its new entries and persists them
type Ingestor struct {
	feeds      database.FeedStore
	articles   database.ArticleStore
	scraper    BatchScraper
	userAgent  string
	maxPerFeed int
	timeout    time.Duration
}

// NewIngestor creates an ingestor using the process configuration
func NewIngestor(feeds database.FeedStore, articles database.ArticleStore, scraper BatchScraper) *Ingestor {
	c := cfg.Get()
	return &Ingestor{
		feeds:      feeds,
		articles:   articles,
		scraper:    scraper,
		userAgent:  c.UserAgent,
		maxPerFeed: c.MaxArticlesPerFeed,
		timeout:    30 * time.Second,
	}
}

// Ingest fetches one feed and stores its new entries. All inserts for the
// feed land in a single transaction; an error from one feed never affects
// another. Returns the number of articles stored.
func (in *Ingestor) Ingest(ctx context.Context, feed *database.Feed) (int, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = in.userAgent

	parseCtx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	parsed, err := parser.ParseURLWithContext(feed.URL, parseCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed %s: %w", feed.URL, err)
	}

	in.ensureFeedName(feed, parsed)

	items, urls := in.selectCandidates(parsed)
	if len(urls) == 0 {
		return 0, nil
	}

	existing, err := in.articles.ExistingURLs(urls)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing articles: %w", err)
	}

	var newItems []*gofeed.Item
	var newURLs []string
	for i, item := range items {
		if existing[urls[i]] {
			continue
		}
		if len(newItems) >= in.maxPerFeed {
			slog.Debug("Per-feed article cap reached", "feed", feed.URL, "cap", in.maxPerFeed)
			break
		}
		newItems = append(newItems, item)
		newURLs = append(newURLs, urls[i])
	}

	if len(newItems) == 0 {
		slog.Debug("No new entries", "feed", feed.URL)
		return 0, nil
	}

	results := in.scraper.ScrapeAll(ctx, newURLs)

	publisher := feedPublisher(feed, parsed)
	articles := make([]database.Article, len(newItems))
	for i, item := range newItems {
		articles[i] = buildArticle(item, results[i], publisher)
	}

	if err := in.articles.InsertArticles(feed.ID, articles); err != nil {
		return 0, fmt.Errorf("failed to store articles for %s: %w", feed.URL, err)
	}

	return len(articles), nil
}

// selectCandidates filters the feed entries down to the ones worth
// storing: entries missing a link, a title or a parseable publication
// date are skipped, as are in-feed duplicates. Delivery order is kept.
func (in *Ingestor) selectCandidates(parsed *gofeed.Feed) ([]*gofeed.Item, []string) {
	var items []*gofeed.Item
	var urls []string
	seen := make(map[string]bool)

	for _, item := range parsed.Items {
		if item.Link == "" || item.Title == "" {
			slog.Debug("Skipping entry without link or title", "feed", parsed.Title)
			continue
		}
		if NormalizeDate(item.PublishedParsed) == nil && NormalizeDate(item.Published) == nil {
			slog.Debug("Skipping entry without parseable date", "url", item.Link)
			continue
		}
		if seen[item.Link] {
			continue
		}
		seen[item.Link] = true
		items = append(items, item)
		urls = append(urls, item.Link)
	}

	return items, urls
}

// buildArticle turns one feed entry plus its scrape result into a storable
// article. Scrape failures become sentinel text so the entry is recorded
// once and never retried automatically.
func buildArticle(item *gofeed.Item, result scrape.Result, publisher string) database.Article {
	published := NormalizeDate(item.PublishedParsed)
	if published == nil {
		published = NormalizeDate(item.Published)
	}

	article := database.Article{
		URL:            item.Link,
		Title:          item.Title,
		Publisher:      publisher,
		PublishedAt:    published,
		RSSDescription: item.Description,
	}

	if result.OK() {
		article.TextContent = &result.Text
		if result.HTML != "" {
			article.HTMLContent = &result.HTML
		}
		wc := result.WordCount
		article.WordCount = &wc
		return article
	}

	sentinel := database.ScrapingErrorPrefix + " " + result.Err
	zero := 0
	article.TextContent = &sentinel
	article.WordCount = &zero
	return article
}

// ensureFeedName backfills the feed's display name from the parsed feed
// title, falling back to the URL host.
func (in *Ingestor) ensureFeedName(feed *database.Feed, parsed *gofeed.Feed) {
	if feed.Name != nil && *feed.Name != "" {
		return
	}

	name := parsed.Title
	if name == "" {
		if u, err := url.Parse(feed.URL); err == nil && u.Host != "" {
			name = u.Host
		} else {
			name = feed.URL
		}
	}

	if err := in.feeds.SetFeedName(feed.ID, name); err != nil {
		slog.Warn("Failed to set feed name", "feed", feed.URL, "error", err)
	}
}

func feedPublisher(feed *database.Feed, parsed *gofeed.Feed) string {
	if parsed.Title != "" {
		return parsed.Title
	}
	if feed.Name != nil && *feed.Name != "" {
		return *feed.Name
	}
	if u, err := url.Parse(feed.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return feed.URL
}
