package enrich

import (
	"strings"

	"newsbrief/app/database"
)

// NeedsScrape reports whether browsing an article should trigger a
// passive background scrape. Articles with a permanent-failure sentinel
// are never retried here, and articles already known to be below the
// word-count gate are not worth fetching again. What remains is content
// that was simply never captured: missing text or missing HTML.
func NeedsScrape(article *database.Article, minWords int) bool {
	if article.HasScrapeError() {
		return false
	}
	if article.WordCount != nil && *article.WordCount < minWords {
		return false
	}
	if article.TextContent == nil || strings.TrimSpace(*article.TextContent) == "" {
		return true
	}
	if article.HTMLContent == nil || strings.TrimSpace(*article.HTMLContent) == "" {
		return true
	}
	return false
}

// NeedsForceScrape is the regeneration-path variant: when the user
// explicitly asks for a fresh summary, sentinel articles and thin
// articles get one more chance on top of everything the passive policy
// would fetch.
func NeedsForceScrape(article *database.Article, minWords int) bool {
	if NeedsScrape(article, minWords) {
		return true
	}
	if article.HasScrapeError() {
		return true
	}
	if article.WordCount != nil && *article.WordCount < minWords {
		return true
	}
	return false
}

// IsSummarizable reports whether an article has real text worth sending
// to the model: non-empty, not a failure sentinel, and either an unknown
// word count or one at or above the gate.
func IsSummarizable(article *database.Article, minWords int) bool {
	if article.TextContent == nil || strings.TrimSpace(*article.TextContent) == "" {
		return false
	}
	if article.HasScrapeError() {
		return false
	}
	if article.WordCount != nil && *article.WordCount < minWords {
		return false
	}
	return true
}
