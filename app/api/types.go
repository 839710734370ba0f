package api

import "time"

type articlePageRequest struct {
	Page          int     `json:"page"`
	PageSize      int     `json:"page_size"`
	FeedIDs       []int64 `json:"feed_ids"`
	TagIDs        []int64 `json:"tag_ids"`
	Keyword       string  `json:"keyword"`
	FavoritesOnly bool    `json:"favorites_only"`
}

type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type articleSummaryResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	Publisher   string        `json:"publisher"`
	PublishedAt *time.Time    `json:"published_at"`
	Summary     string        `json:"summary"`
	WordCount   *int          `json:"word_count"`
	IsFavorite  bool          `json:"is_favorite"`
	HasError    bool          `json:"has_error"`
	Tags        []tagResponse `json:"tags"`
}

type articlePageResponse struct {
	Articles   []articleSummaryResponse `json:"articles"`
	Total      int                      `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
}

type regenerateSummaryRequest struct {
	CustomPrompt   string `json:"custom_prompt"`
	RegenerateTags bool   `json:"regenerate_tags"`
}

type chatRequest struct {
	ArticleID int64  `json:"article_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

type chatMessageResponse struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type createFeedRequest struct {
	URL                  string  `json:"url" binding:"required"`
	Name                 *string `json:"name"`
	FetchIntervalMinutes int     `json:"fetch_interval_minutes"`
}

type updateFeedRequest struct {
	URL                  *string `json:"url"`
	Name                 *string `json:"name"`
	FetchIntervalMinutes *int    `json:"fetch_interval_minutes"`
}

type feedResponse struct {
	ID                   int64      `json:"id"`
	URL                  string     `json:"url"`
	Name                 *string    `json:"name"`
	FetchIntervalMinutes int        `json:"fetch_interval_minutes"`
	LastFetchedAt        *time.Time `json:"last_fetched_at"`
	CreatedAt            time.Time  `json:"created_at"`
}

type configResponse struct {
	SummaryModelName        string `json:"summary_model_name"`
	ChatModelName           string `json:"chat_model_name"`
	TagModelName            string `json:"tag_model_name"`
	ArticlesPerPage         int    `json:"articles_per_page"`
	RSSFetchIntervalMinutes int    `json:"rss_fetch_interval_minutes"`
	MinimumWordCount        int    `json:"minimum_word_count"`
	SummaryPrompt           string `json:"summary_prompt"`
	ChatPrompt              string `json:"chat_prompt"`
	TagGenerationPrompt     string `json:"tag_generation_prompt"`
}

type updateConfigRequest struct {
	SummaryModelName        *string `json:"summary_model_name"`
	ChatModelName           *string `json:"chat_model_name"`
	TagModelName            *string `json:"tag_model_name"`
	ArticlesPerPage         *int    `json:"articles_per_page"`
	RSSFetchIntervalMinutes *int    `json:"rss_fetch_interval_minutes"`
	MinimumWordCount        *int    `json:"minimum_word_count"`
	SummaryPrompt           *string `json:"summary_prompt"`
	ChatPrompt              *string `json:"chat_prompt"`
	TagGenerationPrompt     *string `json:"tag_generation_prompt"`
}
