package api

import (
	"github.com/gin-gonic/gin"

	"newsbrief/app/database"
	"newsbrief/app/enrich"
	"newsbrief/app/ingest"
	"newsbrief/app/llm"
)

// Handler bundles the dependencies the HTTP endpoints work with
type Handler struct {
	feeds     *database.FeedRepository
	articles  *database.ArticleRepository
	summaries *database.SummaryRepository
	chats     *database.ChatRepository
	tags      *database.TagRepository
	settings  *database.SettingsRepository
	enricher  *enrich.Enricher
	llm       *llm.Client
	scheduler *ingest.Scheduler
}

// NewHandler creates a handler over the given collaborators
func NewHandler(
	feeds *database.FeedRepository,
	articles *database.ArticleRepository,
	summaries *database.SummaryRepository,
	chats *database.ChatRepository,
	tags *database.TagRepository,
	settings *database.SettingsRepository,
	enricher *enrich.Enricher,
	llmClient *llm.Client,
	scheduler *ingest.Scheduler,
) *Handler {
	return &Handler{
		feeds:     feeds,
		articles:  articles,
		summaries: summaries,
		chats:     chats,
		tags:      tags,
		settings:  settings,
		enricher:  enricher,
		llm:       llmClient,
		scheduler: scheduler,
	}
}

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/articles/summaries", handler.GetArticleSummaries)
		api.GET("/articles/status/new-articles", handler.CheckNewArticles)
		api.POST("/articles/:id/favorite", handler.ToggleFavorite)
		api.POST("/articles/:id/regenerate-summary", handler.RegenerateSummary)
		api.GET("/articles/:id/content", handler.GetArticleContent)
		api.GET("/articles/:id/chat-history", handler.GetChatHistory)
		api.POST("/chat-with-article", handler.ChatWithArticle)

		api.POST("/feeds", handler.CreateFeed)
		api.GET("/feeds", handler.ListFeeds)
		api.PUT("/feeds/:id", handler.UpdateFeed)
		api.DELETE("/feeds/:id", handler.DeleteFeed)

		api.GET("/tags", handler.ListTags)

		api.POST("/trigger-rss-refresh", handler.TriggerRefresh)

		api.GET("/initial-config", handler.GetConfig)
		api.PUT("/config", handler.UpdateConfig)
	}
}

// HealthCheck reports service liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
