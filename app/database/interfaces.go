package database

type FeedStore interface {
	CreateFeed(url string, name *string, fetchIntervalMinutes int) (*Feed, error)
	GetFeedByID(id int64) (*Feed, error)
	GetFeedByURL(url string) (*Feed, error)
	ListFeeds() ([]Feed, error)
	UpdateFeed(id int64, url string, name *string, fetchIntervalMinutes int) (*Feed, error)
	DeleteFeed(id int64) error
	GetFeedsDueForRefresh() ([]Feed, error)
	TouchLastFetched(id int64) error
	SetFeedName(id int64, name string) error
}

type ArticleStore interface {
	GetArticleByID(id int64) (*Article, error)
	ExistingURLs(urls []string) (map[string]bool, error)
	InsertArticles(feedID int64, articles []Article) error
	UpdateScrapedContent(id int64, title string, text *string, html *string, wordCount *int) error
	SetFavorite(id int64, favorite bool) error
	Search(opts ArticleSearchOptions) ([]Article, int, error)
}
