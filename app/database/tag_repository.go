package database

import (
	"fmt"
	"strings"
)

// TagRepository handles database operations for tags
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// ReplaceArticleTags replaces an article's tag set with the given names.
// Names are normalized (trimmed, lower-cased); empty names are dropped.
// Tags are created on first use and shared across articles.
func (r *TagRepository) ReplaceArticleTags(articleID int64, names []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM article_tags WHERE article_id = ?`, articleID); err != nil {
		return fmt.Errorf("failed to clear article tags: %w", err)
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (name) VALUES (?)`, name); err != nil {
			return fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}

		var tagID int64
		if err := tx.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("failed to look up tag %q: %w", name, err)
		}

		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO article_tags (article_id, tag_id) VALUES (?, ?)
		`, articleID, tagID); err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag replacement: %w", err)
	}

	return nil
}

// GetArticleTags returns an article's tags sorted by name
func (r *TagRepository) GetArticleTags(articleID int64) ([]Tag, error) {
	rows, err := r.db.Query(`
		SELECT t.id, t.name
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id = ?
		ORDER BY t.name
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// GetTagsForArticles returns tags for many articles in one query
func (r *TagRepository) GetTagsForArticles(articleIDs []int64) (map[int64][]Tag, error) {
	tags := make(map[int64][]Tag, len(articleIDs))
	if len(articleIDs) == 0 {
		return tags, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(articleIDs)), ",")
	args := make([]any, len(articleIDs))
	for i, id := range articleIDs {
		args[i] = id
	}

	rows, err := r.db.Query(`
		SELECT at.article_id, t.id, t.name
		FROM tags t
		JOIN article_tags at ON at.tag_id = t.id
		WHERE at.article_id IN (`+placeholders+`)
		ORDER BY t.name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var articleID int64
		var tag Tag
		if err := rows.Scan(&articleID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags[articleID] = append(tags[articleID], tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}

// ListTags returns every tag sorted by name
func (r *TagRepository) ListTags() ([]Tag, error) {
	rows, err := r.db.Query(`SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func collectTags(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return tags, nil
}
