package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/newsbrief.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port               string   `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	FeedURLs           []string `long:"feed-url" env:"RSS_FEED_URLS" env-delim:"," description:"Default RSS feed URLs registered at startup"`
	SchedulerInterval  int      `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler tick interval in seconds"`
	MaxArticlesPerFeed int      `long:"max-articles-per-feed" env:"MAX_ARTICLES_PER_FEED" default:"15" description:"Maximum number of new articles ingested per feed per cycle"`
	PageSize           int      `long:"page-size" env:"DEFAULT_PAGE_SIZE" default:"6" description:"Default number of articles per page"`
	MinimumWordCount   int      `long:"minimum-word-count" env:"MINIMUM_WORD_COUNT" default:"100" description:"Minimum word count for an article to pass the quality gate"`

	// Scraper configuration
	Headless      bool `long:"headless" env:"USE_HEADLESS_BROWSER" description:"Run the scraping browser in headless mode"`
	ScrapeTimeout int  `long:"scrape-timeout" env:"SCRAPE_TIMEOUT" default:"60" description:"Per-URL page navigation timeout in seconds"`
	ScrapeDelay   int  `long:"scrape-delay" env:"SCRAPE_DELAY" default:"1" description:"Delay between page navigations in seconds"`

	// LLM configuration
	GeminiAPIKey     string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key (LLM features are disabled when unset)"`
	SummaryModelName string `long:"summary-model" env:"DEFAULT_SUMMARY_MODEL_NAME" default:"gemini-1.5-flash-latest" description:"Model used for summaries"`
	ChatModelName    string `long:"chat-model" env:"DEFAULT_CHAT_MODEL_NAME" default:"gemini-1.5-flash-latest" description:"Model used for article chat"`
	TagModelName     string `long:"tag-model" env:"DEFAULT_TAG_MODEL_NAME" default:"gemini-1.5-flash-latest" description:"Model used for tag generation"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		FeedURLs:           raw.FeedURLs,
		SchedulerInterval:  raw.SchedulerInterval,
		MaxArticlesPerFeed: raw.MaxArticlesPerFeed,
		PageSize:           raw.PageSize,
		MinimumWordCount:   raw.MinimumWordCount,
		Headless:           raw.Headless,
		ScrapeTimeout:      raw.ScrapeTimeout,
		ScrapeDelay:        raw.ScrapeDelay,
		GeminiAPIKey:       raw.GeminiAPIKey,
		SummaryModelName:   raw.SummaryModelName,
		ChatModelName:      raw.ChatModelName,
		TagModelName:       raw.TagModelName,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SetForTesting replaces the process-wide configuration. Tests only.
func SetForTesting(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
