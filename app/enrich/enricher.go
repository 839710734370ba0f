package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"newsbrief/app/database"
	"newsbrief/app/scrape"
)

// SingleScraper fetches and extracts one article page
type SingleScraper interface {
	ScrapeOne(ctx context.Context, pageURL string) scrape.Result
}

// Enricher performs on-demand scrapes for articles whose content is
// missing or unusable, persisting whatever the attempt produced.
type Enricher struct {
	articles database.ArticleStore
	scraper  SingleScraper
}

// NewEnricher creates an enricher over the given store and scraper
func NewEnricher(articles database.ArticleStore, scraper SingleScraper) *Enricher {
	return &Enricher{articles: articles, scraper: scraper}
}

// Refresh re-scrapes one article and stores the outcome: content fields
// on success, a failure sentinel otherwise. Returns the updated article.
// Only storage errors are returned as errors; a failed scrape is data.
func (e *Enricher) Refresh(ctx context.Context, article *database.Article) (*database.Article, error) {
	result := e.scraper.ScrapeOne(ctx, article.URL)

	var err error
	if result.OK() {
		var html *string
		if result.HTML != "" {
			html = &result.HTML
		}
		wc := result.WordCount
		err = e.articles.UpdateScrapedContent(article.ID, result.Title, &result.Text, html, &wc)
		slog.Info("Article content refreshed", "article_id", article.ID, "words", result.WordCount)
	} else {
		sentinel := database.ScrapingErrorPrefix + " " + result.Err
		zero := 0
		err = e.articles.UpdateScrapedContent(article.ID, "", &sentinel, nil, &zero)
		slog.Warn("Article refresh failed", "article_id", article.ID, "error", result.Err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store refreshed content: %w", err)
	}

	updated, err := e.articles.GetArticleByID(article.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload article: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("article %d disappeared during refresh", article.ID)
	}

	return updated, nil
}
