package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/scrape"
)

type fakeFeedStore struct {
	due     []database.Feed
	touched []int64
	names   map[int64]string
}

func newFakeFeedStore() *fakeFeedStore {
	return &fakeFeedStore{names: make(map[int64]string)}
}

func (s *fakeFeedStore) CreateFeed(url string, name *string, interval int) (*database.Feed, error) {
	return nil, nil
}
func (s *fakeFeedStore) GetFeedByID(id int64) (*database.Feed, error) { return nil, nil }
func (s *fakeFeedStore) GetFeedByURL(url string) (*database.Feed, error) { return nil, nil }
func (s *fakeFeedStore) ListFeeds() ([]database.Feed, error) { return nil, nil }
func (s *fakeFeedStore) UpdateFeed(id int64, url string, name *string, interval int) (*database.Feed, error) {
	return nil, nil
}
func (s *fakeFeedStore) DeleteFeed(id int64) error { return nil }
func (s *fakeFeedStore) GetFeedsDueForRefresh() ([]database.Feed, error) {
	return s.due, nil
}
func (s *fakeFeedStore) TouchLastFetched(id int64) error {
	s.touched = append(s.touched, id)
	return nil
}
func (s *fakeFeedStore) SetFeedName(id int64, name string) error {
	s.names[id] = name
	return nil
}

type fakeArticleStore struct {
	existing  map[string]bool
	inserted  [][]database.Article
	insertErr error
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{existing: make(map[string]bool)}
}

func (s *fakeArticleStore) GetArticleByID(id int64) (*database.Article, error) { return nil, nil }
func (s *fakeArticleStore) ExistingURLs(urls []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for _, u := range urls {
		if s.existing[u] {
			found[u] = true
		}
	}
	return found, nil
}
func (s *fakeArticleStore) InsertArticles(feedID int64, articles []database.Article) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, articles)
	return nil
}
func (s *fakeArticleStore) UpdateScrapedContent(id int64, title string, text *string, html *string, wordCount *int) error {
	return nil
}
func (s *fakeArticleStore) SetFavorite(id int64, favorite bool) error { return nil }
func (s *fakeArticleStore) Search(opts database.ArticleSearchOptions) ([]database.Article, int, error) {
	return nil, 0, nil
}

var _ database.FeedStore = (*fakeFeedStore)(nil)
var _ database.ArticleStore = (*fakeArticleStore)(nil)

type fakeScraper struct {
	failURLs map[string]string
	batches  [][]string
}

func (s *fakeScraper) ScrapeAll(ctx context.Context, urls []string) []scrape.Result {
	s.batches = append(s.batches, urls)
	results := make([]scrape.Result, len(urls))
	for i, u := range urls {
		if msg, ok := s.failURLs[u]; ok {
			results[i] = scrape.Result{URL: u, Err: msg}
			continue
		}
		results[i] = scrape.Result{
			URL:       u,
			Title:     "Scraped Title",
			Text:      "the full extracted article body",
			HTML:      "<p>the full extracted article body</p>",
			WordCount: 150,
		}
	}
	return results
}

func testCfg(maxPerFeed int) {
	cfg.SetForTesting(&cfg.Cfg{
		MaxArticlesPerFeed: maxPerFeed,
		UserAgent:          "test-agent",
	})
}

func rssServer(t *testing.T, items string) *httptest.Server {
	t.Helper()
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Example Feed</title>` + items + `</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func rssItem(title, link, pubDate string) string {
	item := "<item>"
	if title != "" {
		item += "<title>" + title + "</title>"
	}
	if link != "" {
		item += "<link>" + link + "</link>"
	}
	if pubDate != "" {
		item += "<pubDate>" + pubDate + "</pubDate>"
	}
	return item + "<description>entry description</description></item>"
}

func TestIngestStoresNewEntriesAndSkipsKnownOnes(t *testing.T) {
	testCfg(15)

	server := rssServer(t,
		rssItem("Known", "https://example.com/known", "Mon, 02 Jun 2025 10:00:00 GMT")+
			rssItem("Fresh", "https://example.com/fresh", "Mon, 02 Jun 2025 11:00:00 GMT")+
			rssItem("", "https://example.com/untitled", "Mon, 02 Jun 2025 12:00:00 GMT")+
			rssItem("Undated", "https://example.com/undated", "")+
			rssItem("Broken", "https://example.com/broken", "Mon, 02 Jun 2025 13:00:00 GMT"))

	feeds := newFakeFeedStore()
	articles := newFakeArticleStore()
	articles.existing["https://example.com/known"] = true
	scraper := &fakeScraper{failURLs: map[string]string{
		"https://example.com/broken": "scrape failed: net::ERR_TIMED_OUT",
	}}

	ingestor := NewIngestor(feeds, articles, scraper)
	feed := &database.Feed{ID: 1, URL: server.URL}

	count, err := ingestor.Ingest(context.Background(), feed)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// known is deduplicated, untitled and undated are skipped
	if count != 2 {
		t.Fatalf("expected 2 stored articles, got %d", count)
	}
	if len(articles.inserted) != 1 {
		t.Fatalf("expected one batch insert, got %d", len(articles.inserted))
	}

	batch := articles.inserted[0]
	if len(batch) != 2 {
		t.Fatalf("expected 2 articles in batch, got %d", len(batch))
	}

	fresh := batch[0]
	if fresh.URL != "https://example.com/fresh" {
		t.Errorf("expected delivery order preserved, got %s first", fresh.URL)
	}
	if fresh.TextContent == nil || *fresh.TextContent != "the full extracted article body" {
		t.Error("expected scraped text on the successful entry")
	}
	if fresh.WordCount == nil || *fresh.WordCount != 150 {
		t.Error("expected scraped word count on the successful entry")
	}
	if fresh.PublishedAt == nil {
		t.Error("expected a normalized publication date")
	}
	if fresh.Publisher != "Example Feed" {
		t.Errorf("expected publisher from feed title, got %q", fresh.Publisher)
	}

	broken := batch[1]
	if broken.TextContent == nil || !strings.HasPrefix(*broken.TextContent, database.ScrapingErrorPrefix) {
		t.Error("expected sentinel text on the failed entry")
	}
	if broken.HTMLContent != nil {
		t.Error("expected no HTML on the failed entry")
	}
	if broken.WordCount == nil || *broken.WordCount != 0 {
		t.Error("expected word count 0 on the failed entry")
	}

	// only the new URLs reach the scraper, in order
	if len(scraper.batches) != 1 || len(scraper.batches[0]) != 2 {
		t.Fatalf("expected one scrape batch of 2 URLs, got %v", scraper.batches)
	}
	if scraper.batches[0][0] != "https://example.com/fresh" || scraper.batches[0][1] != "https://example.com/broken" {
		t.Errorf("unexpected scrape batch order: %v", scraper.batches[0])
	}

	if feeds.names[1] != "Example Feed" {
		t.Errorf("expected feed name backfilled from feed title, got %q", feeds.names[1])
	}
}

func TestIngestCapsNewEntriesPerFeed(t *testing.T) {
	testCfg(2)

	var items strings.Builder
	for i := 1; i <= 5; i++ {
		items.WriteString(rssItem(
			fmt.Sprintf("Entry %d", i),
			fmt.Sprintf("https://example.com/%d", i),
			"Mon, 02 Jun 2025 10:00:00 GMT"))
	}
	server := rssServer(t, items.String())

	articles := newFakeArticleStore()
	ingestor := NewIngestor(newFakeFeedStore(), articles, &fakeScraper{})

	count, err := ingestor.Ingest(context.Background(), &database.Feed{ID: 1, URL: server.URL})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if count != 2 {
		t.Fatalf("expected cap of 2 articles, got %d", count)
	}
	batch := articles.inserted[0]
	if batch[0].URL != "https://example.com/1" || batch[1].URL != "https://example.com/2" {
		t.Errorf("expected the first entries in delivery order, got %s, %s", batch[0].URL, batch[1].URL)
	}
}

func TestIngestNoNewEntriesInsertsNothing(t *testing.T) {
	testCfg(15)

	server := rssServer(t, rssItem("Seen", "https://example.com/seen", "Mon, 02 Jun 2025 10:00:00 GMT"))

	articles := newFakeArticleStore()
	articles.existing["https://example.com/seen"] = true
	scraper := &fakeScraper{}
	ingestor := NewIngestor(newFakeFeedStore(), articles, scraper)

	count, err := ingestor.Ingest(context.Background(), &database.Feed{ID: 1, URL: server.URL})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 stored articles, got %d", count)
	}
	if len(articles.inserted) != 0 {
		t.Error("expected no insert when nothing is new")
	}
	if len(scraper.batches) != 0 {
		t.Error("expected no scrape batch when nothing is new")
	}
}

func TestIngestPropagatesStorageErrors(t *testing.T) {
	testCfg(15)

	server := rssServer(t, rssItem("New", "https://example.com/new", "Mon, 02 Jun 2025 10:00:00 GMT"))

	articles := newFakeArticleStore()
	articles.insertErr = fmt.Errorf("disk full")
	ingestor := NewIngestor(newFakeFeedStore(), articles, &fakeScraper{})

	if _, err := ingestor.Ingest(context.Background(), &database.Feed{ID: 1, URL: server.URL}); err == nil {
		t.Fatal("expected storage error to propagate")
	}
}
