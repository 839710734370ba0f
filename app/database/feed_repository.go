package database

import (
	"database/sql"
	"fmt"
	"time"
)

// FeedRepository handles database operations for feeds
type FeedRepository struct {
	db *DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

const feedColumns = `id, url, name, fetch_interval_minutes, last_fetched_at, created_at, updated_at`

func scanFeed(row interface{ Scan(...any) error }) (*Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.URL, &feed.Name, &feed.FetchIntervalMinutes,
		&feed.LastFetchedAt, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// CreateFeed inserts a new feed subscription
func (r *FeedRepository) CreateFeed(url string, name *string, fetchIntervalMinutes int) (*Feed, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO feeds (url, name, fetch_interval_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, url, name, fetchIntervalMinutes, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get feed id: %w", err)
	}

	return r.GetFeedByID(id)
}

// GetFeedByID retrieves a feed by its database ID
func (r *FeedRepository) GetFeedByID(id int64) (*Feed, error) {
	feed, err := scanFeed(r.db.QueryRow(`
		SELECT `+feedColumns+` FROM feeds WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by id: %w", err)
	}

	return feed, nil
}

// GetFeedByURL retrieves a feed by its URL
func (r *FeedRepository) GetFeedByURL(url string) (*Feed, error) {
	feed, err := scanFeed(r.db.QueryRow(`
		SELECT `+feedColumns+` FROM feeds WHERE url = ?
	`, url))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return feed, nil
}

// ListFeeds returns all feeds ordered by creation time
func (r *FeedRepository) ListFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT ` + feedColumns + ` FROM feeds ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// UpdateFeed updates a feed's URL, name and refresh interval
func (r *FeedRepository) UpdateFeed(id int64, url string, name *string, fetchIntervalMinutes int) (*Feed, error) {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET url = ?, name = ?, fetch_interval_minutes = ?, updated_at = ?
		WHERE id = ?
	`, url, name, fetchIntervalMinutes, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update feed: %w", err)
	}

	return r.GetFeedByID(id)
}

// DeleteFeed removes a feed; its articles cascade away with it
func (r *FeedRepository) DeleteFeed(id int64) error {
	result, err := r.db.Exec(`DELETE FROM feeds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// GetFeedsDueForRefresh returns feeds never fetched or whose interval has
// elapsed since the last fetch.
func (r *FeedRepository) GetFeedsDueForRefresh() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT ` + feedColumns + `
		FROM feeds
		WHERE last_fetched_at IS NULL
		   OR (julianday('now') - julianday(last_fetched_at)) * 1440.0 >= fetch_interval_minutes
		ORDER BY COALESCE(last_fetched_at, '1970-01-01'), id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds due for refresh: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// TouchLastFetched advances last_fetched_at to now. Called after every
// processing attempt, successful or not, so failing feeds still wait out
// their interval instead of retrying on every cycle.
func (r *FeedRepository) TouchLastFetched(id int64) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		UPDATE feeds SET last_fetched_at = ?, updated_at = ? WHERE id = ?
	`, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to touch last_fetched_at: %w", err)
	}

	return nil
}

// SetFeedName fills in a feed's display name when it was created without one
func (r *FeedRepository) SetFeedName(id int64, name string) error {
	_, err := r.db.Exec(`
		UPDATE feeds SET name = ?, updated_at = ? WHERE id = ? AND (name IS NULL OR name = '')
	`, name, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set feed name: %w", err)
	}

	return nil
}
