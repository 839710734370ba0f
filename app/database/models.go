package database

import (
	"strings"
	"time"
)

// Sentinel prefixes stored in article text_content. An article whose text
// begins with ScrapingErrorPrefix failed a full-page scrape permanently and
// is never retried automatically. ContentErrorPrefix marks extraction-level
// failures recorded the same way.
const (
	ScrapingErrorPrefix = "Scraping Error:"
	ContentErrorPrefix  = "Content Error:"
)

// Feed represents a subscribed RSS/Atom feed
type Feed struct {
	ID                   int64
	URL                  string
	Name                 *string
	FetchIntervalMinutes int
	LastFetchedAt        *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Article represents one ingested entry with its scraped content
type Article struct {
	ID             int64
	FeedID         *int64
	URL            string
	Title          string
	Publisher      string
	PublishedAt    *time.Time
	RSSDescription string
	TextContent    *string
	HTMLContent    *string
	WordCount      *int
	IsFavorite     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasScrapeError reports whether the stored text is a permanent-failure
// sentinel rather than real content.
func (a *Article) HasScrapeError() bool {
	return a.TextContent != nil &&
		(strings.HasPrefix(*a.TextContent, ScrapingErrorPrefix) ||
			strings.HasPrefix(*a.TextContent, ContentErrorPrefix))
}

// Summary is one generated summary; history accumulates per article
type Summary struct {
	ID          int64
	ArticleID   int64
	SummaryText string
	PromptUsed  *string
	ModelUsed   *string
	CreatedAt   time.Time
}

// ChatMessage is one persisted question/answer turn for an article
type ChatMessage struct {
	ID         int64
	ArticleID  int64
	Question   string
	Answer     *string
	PromptUsed *string
	ModelUsed  *string
	CreatedAt  time.Time
}

// Tag is a normalized (lower-cased, trimmed) label shared across articles
type Tag struct {
	ID   int64
	Name string
}

// ArticleSearchOptions drives the paginated article listing
type ArticleSearchOptions struct {
	FeedIDs       []int64
	TagIDs        []int64
	Keyword       string
	FavoritesOnly bool
	Page          int
	PageSize      int
	// MinWordCount gates out thin articles. Ignored during keyword search
	// so explicit searches surface everything that matches.
	MinWordCount int
}
