package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createTestFeed(t *testing.T, db *DB, url string) *Feed {
	t.Helper()

	feed, err := NewFeedRepository(db).CreateFeed(url, nil, 60)
	if err != nil {
		t.Fatalf("failed to create feed: %v", err)
	}
	return feed
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestInsertArticlesCommitsWholeBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	articles := []Article{
		{URL: "https://example.com/a", Title: "A", TextContent: strPtr("alpha"), WordCount: intPtr(1)},
		{URL: "https://example.com/b", Title: "B", TextContent: strPtr("beta"), WordCount: intPtr(1)},
		{URL: "https://example.com/c", Title: "C", TextContent: strPtr("gamma"), WordCount: intPtr(1)},
	}

	if err := repo.InsertArticles(feed.ID, articles); err != nil {
		t.Fatalf("InsertArticles failed: %v", err)
	}

	existing, err := repo.ExistingURLs([]string{"https://example.com/a", "https://example.com/b", "https://example.com/c"})
	if err != nil {
		t.Fatalf("ExistingURLs failed: %v", err)
	}
	if len(existing) != 3 {
		t.Errorf("expected 3 inserted articles, got %d", len(existing))
	}
}

func TestInsertArticlesRollsBackOnMidBatchFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	// The third article repeats the first URL, violating the unique
	// constraint partway through the batch.
	articles := []Article{
		{URL: "https://example.com/one", Title: "One"},
		{URL: "https://example.com/two", Title: "Two"},
		{URL: "https://example.com/one", Title: "Duplicate"},
	}

	if err := repo.InsertArticles(feed.ID, articles); err == nil {
		t.Fatal("expected an error for duplicate URL in batch")
	}

	existing, err := repo.ExistingURLs([]string{"https://example.com/one", "https://example.com/two"})
	if err != nil {
		t.Fatalf("ExistingURLs failed: %v", err)
	}
	if len(existing) != 0 {
		t.Errorf("expected rollback to leave no articles, found %d", len(existing))
	}
}

func TestInsertFailureDoesNotBlockTimestampAdvance(t *testing.T) {
	db := newTestDB(t)
	articleRepo := NewArticleRepository(db)
	feedRepo := NewFeedRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	bad := []Article{
		{URL: "https://example.com/x", Title: "X"},
		{URL: "https://example.com/x", Title: "X again"},
	}
	if err := articleRepo.InsertArticles(feed.ID, bad); err == nil {
		t.Fatal("expected batch insert to fail")
	}

	// A failed batch must not stop the feed's fetch timestamp from
	// advancing, otherwise a broken feed retries on every cycle.
	if err := feedRepo.TouchLastFetched(feed.ID); err != nil {
		t.Fatalf("TouchLastFetched failed: %v", err)
	}

	updated, err := feedRepo.GetFeedByID(feed.ID)
	if err != nil {
		t.Fatalf("GetFeedByID failed: %v", err)
	}
	if updated.LastFetchedAt == nil {
		t.Error("expected last_fetched_at to be set after touch")
	}

	due, err := feedRepo.GetFeedsDueForRefresh()
	if err != nil {
		t.Fatalf("GetFeedsDueForRefresh failed: %v", err)
	}
	for _, f := range due {
		if f.ID == feed.ID {
			t.Error("freshly touched feed should not be due for refresh")
		}
	}
}

func TestSearchWordCountGate(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	articles := []Article{
		{URL: "https://example.com/long", Title: "Long read", TextContent: strPtr("plenty of words"), WordCount: intPtr(500)},
		{URL: "https://example.com/short", Title: "Short note", TextContent: strPtr("few words"), WordCount: intPtr(10)},
		{URL: "https://example.com/unknown", Title: "Unscraped", WordCount: nil},
	}
	if err := repo.InsertArticles(feed.ID, articles); err != nil {
		t.Fatalf("InsertArticles failed: %v", err)
	}

	// Browsing applies the gate: short articles hidden, unknown counts kept
	results, total, err := repo.Search(ArticleSearchOptions{Page: 1, PageSize: 10, MinWordCount: 100})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 gated results, got %d", total)
	}
	for _, a := range results {
		if a.URL == "https://example.com/short" {
			t.Error("short article should be gated out of browsing")
		}
	}

	// Keyword search bypasses the gate
	_, total, err = repo.Search(ArticleSearchOptions{Page: 1, PageSize: 10, MinWordCount: 100, Keyword: "Short"})
	if err != nil {
		t.Fatalf("keyword Search failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected keyword search to find the short article, got %d results", total)
	}
}

func TestSearchFavoritesAndPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	articles := []Article{
		{URL: "https://example.com/1", Title: "First"},
		{URL: "https://example.com/2", Title: "Second"},
		{URL: "https://example.com/3", Title: "Third"},
	}
	if err := repo.InsertArticles(feed.ID, articles); err != nil {
		t.Fatalf("InsertArticles failed: %v", err)
	}

	page1, total, err := repo.Search(ArticleSearchOptions{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 3 || len(page1) != 2 {
		t.Errorf("expected total 3 with 2 on page 1, got total %d len %d", total, len(page1))
	}

	page2, _, err := repo.Search(ArticleSearchOptions{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page2) != 1 {
		t.Errorf("expected 1 article on page 2, got %d", len(page2))
	}

	if err := repo.SetFavorite(page2[0].ID, true); err != nil {
		t.Fatalf("SetFavorite failed: %v", err)
	}

	favs, total, err := repo.Search(ArticleSearchOptions{Page: 1, PageSize: 10, FavoritesOnly: true})
	if err != nil {
		t.Fatalf("favorites Search failed: %v", err)
	}
	if total != 1 || len(favs) != 1 || favs[0].ID != page2[0].ID {
		t.Errorf("expected only the favorited article, got total %d", total)
	}
}

func TestSearchRequiresEveryTag(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)
	tagRepo := NewTagRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	articles := []Article{
		{URL: "https://example.com/both", Title: "Both tags"},
		{URL: "https://example.com/one", Title: "One tag"},
	}
	if err := repo.InsertArticles(feed.ID, articles); err != nil {
		t.Fatalf("InsertArticles failed: %v", err)
	}

	all, _, err := repo.Search(ArticleSearchOptions{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	idByURL := make(map[string]int64)
	for _, a := range all {
		idByURL[a.URL] = a.ID
	}

	if err := tagRepo.ReplaceArticleTags(idByURL["https://example.com/both"], []string{"go", "sqlite"}); err != nil {
		t.Fatalf("ReplaceArticleTags failed: %v", err)
	}
	if err := tagRepo.ReplaceArticleTags(idByURL["https://example.com/one"], []string{"go"}); err != nil {
		t.Fatalf("ReplaceArticleTags failed: %v", err)
	}

	tags, err := tagRepo.ListTags()
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	tagIDByName := make(map[string]int64)
	for _, tag := range tags {
		tagIDByName[tag.Name] = tag.ID
	}

	// Selecting both tags narrows to articles carrying both, not either
	results, total, err := repo.Search(ArticleSearchOptions{
		Page: 1, PageSize: 10,
		TagIDs: []int64{tagIDByName["go"], tagIDByName["sqlite"]},
	})
	if err != nil {
		t.Fatalf("tag Search failed: %v", err)
	}
	if total != 1 || len(results) != 1 || results[0].URL != "https://example.com/both" {
		t.Errorf("expected only the article with both tags, got total %d", total)
	}

	// A single tag still matches every article carrying it
	_, total, err = repo.Search(ArticleSearchOptions{
		Page: 1, PageSize: 10,
		TagIDs: []int64{tagIDByName["go"]},
	})
	if err != nil {
		t.Fatalf("single-tag Search failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected both articles for the shared tag, got %d", total)
	}
}

func TestNewArticlesStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewArticleRepository(db)

	latest, count, err := repo.NewArticlesStatus(nil)
	if err != nil {
		t.Fatalf("NewArticlesStatus failed: %v", err)
	}
	if latest != nil || count != 0 {
		t.Errorf("expected no timestamp and zero count on empty table, got %v, %d", latest, count)
	}

	feed := createTestFeed(t, db, "https://example.com/feed.xml")
	articles := []Article{
		{URL: "https://example.com/a", Title: "A"},
		{URL: "https://example.com/b", Title: "B"},
	}
	if err := repo.InsertArticles(feed.ID, articles); err != nil {
		t.Fatalf("InsertArticles failed: %v", err)
	}

	latest, count, err = repo.NewArticlesStatus(nil)
	if err != nil {
		t.Fatalf("NewArticlesStatus failed: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest timestamp once articles exist")
	}
	if count != 2 {
		t.Errorf("expected total count without a cutoff, got %d", count)
	}

	past := latest.Add(-time.Hour)
	_, count, err = repo.NewArticlesStatus(&past)
	if err != nil {
		t.Fatalf("NewArticlesStatus failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected both articles after a past cutoff, got %d", count)
	}

	future := latest.Add(time.Hour)
	latestAgain, count, err := repo.NewArticlesStatus(&future)
	if err != nil {
		t.Fatalf("NewArticlesStatus failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no articles after a future cutoff, got %d", count)
	}
	if latestAgain == nil || !latestAgain.Equal(*latest) {
		t.Error("expected the latest timestamp regardless of cutoff")
	}
}

func TestDeleteFeedCascadesToArticles(t *testing.T) {
	db := newTestDB(t)
	articleRepo := NewArticleRepository(db)
	feedRepo := NewFeedRepository(db)
	feed := createTestFeed(t, db, "https://example.com/feed.xml")

	if err := articleRepo.InsertArticles(feed.ID, []Article{{URL: "https://example.com/gone", Title: "Gone"}}); err != nil {
		t.Fatalf("InsertArticles failed: %v", err)
	}

	if err := feedRepo.DeleteFeed(feed.ID); err != nil {
		t.Fatalf("DeleteFeed failed: %v", err)
	}

	existing, err := articleRepo.ExistingURLs([]string{"https://example.com/gone"})
	if err != nil {
		t.Fatalf("ExistingURLs failed: %v", err)
	}
	if len(existing) != 0 {
		t.Error("expected cascade delete to remove the feed's articles")
	}
}
