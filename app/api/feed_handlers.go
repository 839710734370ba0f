package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"newsbrief/app/database"
)

func feedToResponse(feed *database.Feed) feedResponse {
	return feedResponse{
		ID:                   feed.ID,
		URL:                  feed.URL,
		Name:                 feed.Name,
		FetchIntervalMinutes: feed.FetchIntervalMinutes,
		LastFetchedAt:        feed.LastFetchedAt,
		CreatedAt:            feed.CreatedAt,
	}
}

// CreateFeed registers a new feed subscription. Duplicate URLs are
// rejected with 409 rather than silently merged.
func (h *Handler) CreateFeed(c *gin.Context) {
	var req createFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	interval := req.FetchIntervalMinutes
	if interval == 0 {
		interval = h.settings.GetInt(database.SettingRSSFetchIntervalMinutes, 60)
	}
	if interval < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fetch_interval_minutes must be positive"})
		return
	}

	existing, err := h.feeds.GetFeedByURL(req.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing feeds"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a feed with this URL already exists"})
		return
	}

	feed, err := h.feeds.CreateFeed(req.URL, req.Name, interval)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create feed"})
		return
	}

	c.JSON(http.StatusCreated, feedToResponse(feed))
}

// ListFeeds returns every feed subscription
func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feeds.ListFeeds()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feeds"})
		return
	}

	response := make([]feedResponse, 0, len(feeds))
	for i := range feeds {
		response = append(response, feedToResponse(&feeds[i]))
	}

	c.JSON(http.StatusOK, response)
}

// UpdateFeed changes a feed's URL, name or refresh interval
func (h *Handler) UpdateFeed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feed id"})
		return
	}

	var req updateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	feed, err := h.feeds.GetFeedByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	if feed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		return
	}

	url := feed.URL
	if req.URL != nil && *req.URL != "" {
		url = *req.URL
	}
	if url != feed.URL {
		existing, err := h.feeds.GetFeedByURL(url)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing feeds"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "a feed with this URL already exists"})
			return
		}
	}
	name := feed.Name
	if req.Name != nil {
		name = req.Name
	}
	interval := feed.FetchIntervalMinutes
	if req.FetchIntervalMinutes != nil {
		if *req.FetchIntervalMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fetch_interval_minutes must be positive"})
			return
		}
		interval = *req.FetchIntervalMinutes
	}

	updated, err := h.feeds.UpdateFeed(id, url, name, interval)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update feed"})
		return
	}

	c.JSON(http.StatusOK, feedToResponse(updated))
}

// DeleteFeed removes a feed; its articles go with it
func (h *Handler) DeleteFeed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feed id"})
		return
	}

	if err := h.feeds.DeleteFeed(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete feed"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTags returns every tag in use
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tags.ListTags()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tags"})
		return
	}

	response := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		response = append(response, tagResponse{ID: tag.ID, Name: tag.Name})
	}

	c.JSON(http.StatusOK, response)
}

// TriggerRefresh kicks off a refresh cycle in the background. The cycle
// itself decides whether one is already running. Runs detached from the
// request context so the cycle survives the response.
func (h *Handler) TriggerRefresh(c *gin.Context) {
	h.scheduler.TriggerNow(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}
