package database

import (
	"fmt"
	"strings"
	"time"
)

// SummaryRepository handles database operations for article summaries
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// AddSummary appends a summary to an article's history
func (r *SummaryRepository) AddSummary(articleID int64, summaryText string, promptUsed, modelUsed *string) (*Summary, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO summaries (article_id, summary_text, prompt_used, model_used, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, articleID, summaryText, promptUsed, modelUsed, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add summary: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get summary id: %w", err)
	}

	return &Summary{
		ID:          id,
		ArticleID:   articleID,
		SummaryText: summaryText,
		PromptUsed:  promptUsed,
		ModelUsed:   modelUsed,
		CreatedAt:   now,
	}, nil
}

// GetLatestSummary returns the newest non-error summary for an article,
// or nil when none exists. Error placeholders stay in the history but are
// never served as the current summary.
func (r *SummaryRepository) GetLatestSummary(articleID int64) (*Summary, error) {
	rows, err := r.db.Query(`
		SELECT id, article_id, summary_text, prompt_used, model_used, created_at
		FROM summaries
		WHERE article_id = ?
		ORDER BY created_at DESC, id DESC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var summary Summary
		err := rows.Scan(
			&summary.ID, &summary.ArticleID, &summary.SummaryText,
			&summary.PromptUsed, &summary.ModelUsed, &summary.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		if !strings.HasPrefix(summary.SummaryText, "Error") {
			return &summary, nil
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return nil, nil
}

// GetLatestSummaries returns the newest non-error summary for each of the
// given articles in one query round trip.
func (r *SummaryRepository) GetLatestSummaries(articleIDs []int64) (map[int64]*Summary, error) {
	summaries := make(map[int64]*Summary, len(articleIDs))
	if len(articleIDs) == 0 {
		return summaries, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(articleIDs)), ",")
	args := make([]any, len(articleIDs))
	for i, id := range articleIDs {
		args[i] = id
	}

	rows, err := r.db.Query(`
		SELECT id, article_id, summary_text, prompt_used, model_used, created_at
		FROM summaries
		WHERE article_id IN (`+placeholders+`)
		ORDER BY created_at DESC, id DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var summary Summary
		err := rows.Scan(
			&summary.ID, &summary.ArticleID, &summary.SummaryText,
			&summary.PromptUsed, &summary.ModelUsed, &summary.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		if _, seen := summaries[summary.ArticleID]; seen {
			continue
		}
		if strings.HasPrefix(summary.SummaryText, "Error") {
			continue
		}
		s := summary
		summaries[summary.ArticleID] = &s
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	return summaries, nil
}

// DeleteSummaries clears an article's summary history before regeneration
func (r *SummaryRepository) DeleteSummaries(articleID int64) error {
	_, err := r.db.Exec(`DELETE FROM summaries WHERE article_id = ?`, articleID)
	if err != nil {
		return fmt.Errorf("failed to delete summaries: %w", err)
	}

	return nil
}
