package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/enrich"
	"newsbrief/app/llm"
	"newsbrief/app/sanitize"
)

func (h *Handler) minWordCount() int {
	return h.settings.GetInt(database.SettingMinimumWordCount, cfg.Get().MinimumWordCount)
}

func (h *Handler) articleByParam(c *gin.Context) *database.Article {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return nil
	}

	article, err := h.articles.GetArticleByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return nil
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return nil
	}

	return article
}

// GetArticleSummaries serves one page of articles with their current
// summaries. Articles whose content was never captured are scraped on
// demand, and summarizable articles without a summary get one generated
// before the page is returned. LLM failures are rendered as literal
// error strings, never as HTTP errors.
func (h *Handler) GetArticleSummaries(c *gin.Context) {
	var req articlePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	minWords := h.minWordCount()
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = h.settings.GetInt(database.SettingArticlesPerPage, cfg.Get().PageSize)
	}

	articles, total, err := h.articles.Search(database.ArticleSearchOptions{
		FeedIDs:       req.FeedIDs,
		TagIDs:        req.TagIDs,
		Keyword:       req.Keyword,
		FavoritesOnly: req.FavoritesOnly,
		Page:          req.Page,
		PageSize:      pageSize,
		MinWordCount:  minWords,
	})
	if err != nil {
		slog.Error("Article search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search articles"})
		return
	}

	for i := range articles {
		if enrich.NeedsScrape(&articles[i], minWords) {
			updated, err := h.enricher.Refresh(c.Request.Context(), &articles[i])
			if err != nil {
				slog.Error("On-demand enrichment failed", "article_id", articles[i].ID, "error", err)
				continue
			}
			articles[i] = *updated
		}
	}

	articleIDs := make([]int64, len(articles))
	for i, a := range articles {
		articleIDs[i] = a.ID
	}

	latest, err := h.summaries.GetLatestSummaries(articleIDs)
	if err != nil {
		slog.Error("Failed to load summaries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summaries"})
		return
	}

	articleTags, err := h.tags.GetTagsForArticles(articleIDs)
	if err != nil {
		slog.Error("Failed to load tags", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tags"})
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	response := articlePageResponse{
		Articles:   make([]articleSummaryResponse, 0, len(articles)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	for i := range articles {
		article := &articles[i]

		summaryText := ""
		if s, ok := latest[article.ID]; ok {
			summaryText = s.SummaryText
		} else if enrich.IsSummarizable(article, minWords) {
			summaryText = h.generateSummary(c, article)
		} else if article.HasScrapeError() {
			summaryText = *article.TextContent
		}

		item := articleSummaryResponse{
			ID:          article.ID,
			Title:       article.Title,
			URL:         article.URL,
			Publisher:   article.Publisher,
			PublishedAt: article.PublishedAt,
			Summary:     summaryText,
			WordCount:   article.WordCount,
			IsFavorite:  article.IsFavorite,
			HasError:    article.HasScrapeError(),
			Tags:        make([]tagResponse, 0),
		}
		for _, tag := range articleTags[article.ID] {
			item.Tags = append(item.Tags, tagResponse{ID: tag.ID, Name: tag.Name})
		}

		response.Articles = append(response.Articles, item)
	}

	c.JSON(http.StatusOK, response)
}

// generateSummary produces and persists a summary for one article,
// generating tags alongside when the article has none yet. Failures are
// persisted as error placeholders so the next page view retries, and the
// placeholder text is what the caller displays.
func (h *Handler) generateSummary(c *gin.Context, article *database.Article) string {
	model := h.settings.GetString(database.SettingSummaryModelName, cfg.Get().SummaryModelName)
	prompt := h.settings.GetString(database.SettingSummaryPrompt, llm.DefaultSummaryPrompt)

	summaryText, err := h.llm.Summarize(c.Request.Context(), model, *article.TextContent, prompt)
	if err != nil {
		if err == llm.ErrNotConfigured {
			return ""
		}
		slog.Warn("Summary generation failed", "article_id", article.ID, "error", err)
		summaryText = fmt.Sprintf("Error generating summary: %v", err)
	}

	if _, err := h.summaries.AddSummary(article.ID, summaryText, &prompt, &model); err != nil {
		slog.Error("Failed to store summary", "article_id", article.ID, "error", err)
	}

	h.generateTagsIfMissing(c, article)

	return summaryText
}

func (h *Handler) generateTagsIfMissing(c *gin.Context, article *database.Article) {
	existing, err := h.tags.GetArticleTags(article.ID)
	if err != nil || len(existing) > 0 {
		return
	}

	model := h.settings.GetString(database.SettingTagModelName, cfg.Get().TagModelName)
	prompt := h.settings.GetString(database.SettingTagGenerationPrompt, llm.DefaultTagGenerationPrompt)

	tags, err := h.llm.GenerateTags(c.Request.Context(), model, *article.TextContent, prompt)
	if err != nil {
		if err != llm.ErrNotConfigured {
			slog.Warn("Tag generation failed", "article_id", article.ID, "error", err)
		}
		return
	}

	if err := h.tags.ReplaceArticleTags(article.ID, tags); err != nil {
		slog.Error("Failed to store tags", "article_id", article.ID, "error", err)
	}
}

// polling clients send timestamps with or without an offset
var sinceLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// CheckNewArticles tells polling clients whether articles arrived after
// their last known timestamp. Without a timestamp it reports the whole
// table, so a fresh client learns the current high-water mark.
func (h *Handler) CheckNewArticles(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since_timestamp"); raw != "" {
		for _, layout := range sinceLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				utc := t.UTC()
				since = &utc
				break
			}
		}
		if since == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since_timestamp must be an ISO 8601 timestamp"})
			return
		}
	}

	latest, count, err := h.articles.NewArticlesStatus(since)
	if err != nil {
		slog.Error("New-article check failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check for new articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"new_articles_available":   count > 0,
		"latest_article_timestamp": latest,
		"article_count":            count,
	})
}

// ToggleFavorite flips an article's favorite flag
func (h *Handler) ToggleFavorite(c *gin.Context) {
	article := h.articleByParam(c)
	if article == nil {
		return
	}

	if err := h.articles.SetFavorite(article.ID, !article.IsFavorite); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": article.ID, "is_favorite": !article.IsFavorite})
}

// RegenerateSummary discards an article's summary history and produces a
// fresh one, optionally with a caller-supplied prompt. Articles whose
// content is unusable get one forced re-scrape first; sentinel and thin
// articles are included in that second chance.
func (h *Handler) RegenerateSummary(c *gin.Context) {
	article := h.articleByParam(c)
	if article == nil {
		return
	}

	var req regenerateSummaryRequest
	_ = c.ShouldBindJSON(&req)

	minWords := h.minWordCount()

	if enrich.NeedsForceScrape(article, minWords) {
		updated, err := h.enricher.Refresh(c.Request.Context(), article)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh article content"})
			return
		}
		article = updated
	}

	if !enrich.IsSummarizable(article, minWords) {
		detail := "article has no summarizable content"
		if article.HasScrapeError() {
			detail = *article.TextContent
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": detail})
		return
	}

	if err := h.summaries.DeleteSummaries(article.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear summary history"})
		return
	}

	model := h.settings.GetString(database.SettingSummaryModelName, cfg.Get().SummaryModelName)
	prompt := strings.TrimSpace(req.CustomPrompt)
	if prompt == "" {
		prompt = h.settings.GetString(database.SettingSummaryPrompt, llm.DefaultSummaryPrompt)
	}

	summaryText, err := h.llm.Summarize(c.Request.Context(), model, *article.TextContent, prompt)
	if err != nil {
		summaryText = fmt.Sprintf("Error generating summary: %v", err)
	}

	if _, err := h.summaries.AddSummary(article.ID, summaryText, &prompt, &model); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store summary"})
		return
	}

	if req.RegenerateTags {
		h.regenerateTags(c, article)
	}

	c.JSON(http.StatusOK, gin.H{"id": article.ID, "summary": summaryText})
}

func (h *Handler) regenerateTags(c *gin.Context, article *database.Article) {
	model := h.settings.GetString(database.SettingTagModelName, cfg.Get().TagModelName)
	prompt := h.settings.GetString(database.SettingTagGenerationPrompt, llm.DefaultTagGenerationPrompt)

	tags, err := h.llm.GenerateTags(c.Request.Context(), model, *article.TextContent, prompt)
	if err != nil {
		slog.Warn("Tag regeneration failed", "article_id", article.ID, "error", err)
		return
	}

	if err := h.tags.ReplaceArticleTags(article.ID, tags); err != nil {
		slog.Error("Failed to store tags", "article_id", article.ID, "error", err)
	}
}

// GetArticleContent serves an article's sanitized HTML, scraping on
// demand when the content was never captured.
func (h *Handler) GetArticleContent(c *gin.Context) {
	article := h.articleByParam(c)
	if article == nil {
		return
	}

	minWords := h.minWordCount()
	if enrich.NeedsScrape(article, minWords) {
		updated, err := h.enricher.Refresh(c.Request.Context(), article)
		if err == nil {
			article = updated
		}
	}

	if article.HTMLContent == nil || *article.HTMLContent == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no content available for this article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      article.ID,
		"title":   article.Title,
		"url":     article.URL,
		"content": sanitize.HTML(*article.HTMLContent),
	})
}

// GetChatHistory returns an article's persisted chat transcript
func (h *Handler) GetChatHistory(c *gin.Context) {
	article := h.articleByParam(c)
	if article == nil {
		return
	}

	history, err := h.chats.GetHistory(article.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat history"})
		return
	}

	messages := make([]chatMessageResponse, 0, len(history))
	for _, msg := range history {
		answer := ""
		if msg.Answer != nil {
			answer = *msg.Answer
		}
		messages = append(messages, chatMessageResponse{
			ID:        msg.ID,
			Question:  msg.Question,
			Answer:    answer,
			CreatedAt: msg.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"article_id": article.ID, "messages": messages})
}

// ChatWithArticle answers a question about an article, re-scraping first
// when the stored content is unusable. Successful turns are persisted;
// failed turns are shown to the caller but never stored.
func (h *Handler) ChatWithArticle(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_id and question are required"})
		return
	}

	article, err := h.articles.GetArticleByID(req.ArticleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}

	minWords := h.minWordCount()
	if !enrich.IsSummarizable(article, minWords) && enrich.NeedsForceScrape(article, minWords) {
		if updated, err := h.enricher.Refresh(c.Request.Context(), article); err == nil {
			article = updated
		}
	}

	articleText := ""
	if article.TextContent != nil && !article.HasScrapeError() {
		articleText = *article.TextContent
	}

	history, err := h.chats.GetHistory(article.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat history"})
		return
	}
	turns := make([]llm.ChatTurn, 0, len(history))
	for _, msg := range history {
		if msg.Answer == nil {
			continue
		}
		turns = append(turns, llm.ChatTurn{Question: msg.Question, Answer: *msg.Answer})
	}

	model := h.settings.GetString(database.SettingChatModelName, cfg.Get().ChatModelName)
	prompt := h.settings.GetString(database.SettingChatPrompt, llm.DefaultChatPrompt)

	answer, err := h.llm.Chat(c.Request.Context(), model, articleText, req.Question, turns, prompt)
	if err != nil {
		// shown, not persisted
		c.JSON(http.StatusOK, gin.H{
			"article_id": article.ID,
			"question":   req.Question,
			"answer":     fmt.Sprintf("Error answering question: %v", err),
			"persisted":  false,
		})
		return
	}

	if _, err := h.chats.AddMessage(article.ID, req.Question, answer, &prompt, &model); err != nil {
		slog.Error("Failed to store chat turn", "article_id", article.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"article_id": article.ID,
		"question":   req.Question,
		"answer":     answer,
		"persisted":  true,
	})
}
