package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port               string
	FeedURLs           []string
	SchedulerInterval  int
	MaxArticlesPerFeed int
	PageSize           int
	MinimumWordCount   int

	// Scraper configuration
	Headless      bool
	ScrapeTimeout int
	ScrapeDelay   int

	// LLM configuration
	GeminiAPIKey     string
	SummaryModelName string
	ChatModelName    string
	TagModelName     string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
