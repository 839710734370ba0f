package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newsbrief/app/api"
	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/enrich"
	"newsbrief/app/ingest"
	"newsbrief/app/llm"
	"newsbrief/app/scrape"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	c, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if c == nil {
		return // --help
	}

	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting newsbrief", "version", c.Version)

	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	articleRepo := database.NewArticleRepository(db)
	summaryRepo := database.NewSummaryRepository(db)
	chatRepo := database.NewChatRepository(db)
	tagRepo := database.NewTagRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	if err := settingsRepo.SeedDefaults(defaultSettings(c)); err != nil {
		slog.Error("Failed to seed default settings", "error", err)
		os.Exit(1)
	}

	registerDefaultFeeds(feedRepo, c.FeedURLs)

	orchestrator := scrape.NewOrchestrator()
	enricher := enrich.NewEnricher(articleRepo, orchestrator)
	ingestor := ingest.NewIngestor(feedRepo, articleRepo, orchestrator)
	scheduler := ingest.NewScheduler(feedRepo, ingestor,
		time.Duration(c.SchedulerInterval)*time.Second)

	llmClient := llm.NewClient(c.GeminiAPIKey)
	if c.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, LLM features disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)

	handler := api.NewHandler(feedRepo, articleRepo, summaryRepo, chatRepo, tagRepo,
		settingsRepo, enricher, llmClient, scheduler)

	server := &http.Server{
		Addr:    ":" + c.Port,
		Handler: api.NewServer(handler, c.Debug),
	}

	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	slog.Info("Shutdown complete")
}

// defaultSettings builds the seed values for the settings table. Existing
// keys are never overwritten.
func defaultSettings(c *cfg.Cfg) map[string]string {
	return map[string]string{
		database.SettingSummaryModelName:        c.SummaryModelName,
		database.SettingChatModelName:           c.ChatModelName,
		database.SettingTagModelName:            c.TagModelName,
		database.SettingArticlesPerPage:         strconv.Itoa(c.PageSize),
		database.SettingRSSFetchIntervalMinutes: "60",
		database.SettingMinimumWordCount:        strconv.Itoa(c.MinimumWordCount),
		database.SettingSummaryPrompt:           llm.DefaultSummaryPrompt,
		database.SettingChatPrompt:              llm.DefaultChatPrompt,
		database.SettingTagGenerationPrompt:     llm.DefaultTagGenerationPrompt,
	}
}

// registerDefaultFeeds idempotently adds the feed URLs configured via the
// environment. Feeds already present are left untouched.
func registerDefaultFeeds(feeds *database.FeedRepository, urls []string) {
	for _, url := range urls {
		existing, err := feeds.GetFeedByURL(url)
		if err != nil {
			slog.Error("Failed to check default feed", "url", url, "error", err)
			continue
		}
		if existing != nil {
			continue
		}
		if _, err := feeds.CreateFeed(url, nil, 60); err != nil {
			slog.Error("Failed to register default feed", "url", url, "error", err)
			continue
		}
		slog.Info("Registered default feed", "url", url)
	}
}
