package database

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ArticleRepository handles database operations for articles
type ArticleRepository struct {
	db *DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

const articleColumns = `id, feed_id, url, title, publisher, published_at, rss_description,
	text_content, html_content, word_count, is_favorite, created_at, updated_at`

func scanArticle(row interface{ Scan(...any) error }) (*Article, error) {
	var article Article
	err := row.Scan(
		&article.ID, &article.FeedID, &article.URL, &article.Title, &article.Publisher,
		&article.PublishedAt, &article.RSSDescription, &article.TextContent,
		&article.HTMLContent, &article.WordCount, &article.IsFavorite,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticleByID retrieves an article by its database ID
func (r *ArticleRepository) GetArticleByID(id int64) (*Article, error) {
	article, err := scanArticle(r.db.QueryRow(`
		SELECT `+articleColumns+` FROM articles WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by id: %w", err)
	}

	return article, nil
}

// ExistingURLs reports which of the given URLs already have an article row.
// The article table is the authority for deduplication.
func (r *ArticleRepository) ExistingURLs(urls []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return existing, nil
	}

	query, args, err := sq.Select("url").From("articles").Where(sq.Eq{"url": urls}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build url lookup query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url row: %w", err)
		}
		existing[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating url rows: %w", err)
	}

	return existing, nil
}

// InsertArticles inserts all articles for one feed inside a single
// transaction: either the whole batch lands or none of it does.
func (r *ArticleRepository) InsertArticles(feedID int64, articles []Article) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (feed_id, url, title, publisher, published_at, rss_description,
			text_content, html_content, word_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare article insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, article := range articles {
		_, err := stmt.Exec(
			feedID, article.URL, article.Title, article.Publisher, article.PublishedAt,
			article.RSSDescription, article.TextContent, article.HTMLContent,
			article.WordCount, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert article %s: %w", article.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit article batch: %w", err)
	}

	return nil
}

// UpdateScrapedContent replaces an article's content fields after a scrape
func (r *ArticleRepository) UpdateScrapedContent(id int64, title string, text *string, html *string, wordCount *int) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET title = COALESCE(NULLIF(?, ''), title),
		    text_content = ?, html_content = ?, word_count = ?, updated_at = ?
		WHERE id = ?
	`, title, text, html, wordCount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update scraped content: %w", err)
	}

	return nil
}

// SetFavorite sets an article's favorite flag
func (r *ArticleRepository) SetFavorite(id int64, favorite bool) error {
	result, err := r.db.Exec(`
		UPDATE articles SET is_favorite = ?, updated_at = ? WHERE id = ?
	`, favorite, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// NewArticlesStatus reports the newest article creation timestamp and how
// many articles arrived strictly after the given instant. A nil since
// counts every article. An empty table yields a nil timestamp and zero.
func (r *ArticleRepository) NewArticlesStatus(since *time.Time) (*time.Time, int, error) {
	var latest time.Time
	err := r.db.QueryRow(`
		SELECT created_at FROM articles ORDER BY created_at DESC LIMIT 1
	`).Scan(&latest)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get latest article timestamp: %w", err)
	}

	query := `SELECT COUNT(id) FROM articles`
	var args []any
	if since != nil {
		query += ` WHERE created_at > ?`
		args = append(args, since.UTC())
	}

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count new articles: %w", err)
	}

	latestUTC := latest.UTC()
	return &latestUTC, count, nil
}

// Search returns one page of articles matching the filters, newest first,
// along with the total match count.
func (r *ArticleRepository) Search(opts ArticleSearchOptions) ([]Article, int, error) {
	base := sq.Select().From("articles a")

	if len(opts.FeedIDs) > 0 {
		base = base.Where(sq.Eq{"a.feed_id": opts.FeedIDs})
	}
	for _, tagID := range opts.TagIDs {
		// an article must carry every selected tag, not just one of them
		base = base.Where(sq.Expr(
			"EXISTS (SELECT 1 FROM article_tags at WHERE at.article_id = a.id AND at.tag_id = ?)",
			tagID))
	}
	if opts.FavoritesOnly {
		base = base.Where(sq.Eq{"a.is_favorite": true})
	}
	if opts.Keyword != "" {
		pattern := "%" + opts.Keyword + "%"
		base = base.Where(sq.Or{
			sq.Like{"a.title": pattern},
			sq.Like{"a.rss_description": pattern},
			sq.Like{"a.text_content": pattern},
		})
	} else if opts.MinWordCount > 0 {
		// The quality gate hides thin articles from browsing, but an
		// explicit keyword search sees everything.
		base = base.Where(sq.Or{
			sq.Eq{"a.word_count": nil},
			sq.GtOrEq{"a.word_count": opts.MinWordCount},
		})
	}

	countQuery, countArgs, err := base.Columns("COUNT(DISTINCT a.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build article count query: %w", err)
	}

	var total int
	if err := r.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 6
	}

	query, args, err := base.
		Columns(`DISTINCT a.id, a.feed_id, a.url, a.title, a.publisher, a.published_at,
			a.rss_description, a.text_content, a.html_content, a.word_count,
			a.is_favorite, a.created_at, a.updated_at`).
		OrderBy("a.published_at IS NULL", "a.published_at DESC", "a.id DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build article search query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, total, nil
}
