package database

import (
	"fmt"
	"time"
)

// ChatRepository handles database operations for article chat transcripts
type ChatRepository struct {
	db *DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// AddMessage appends one completed question/answer turn. Failed turns are
// never written; the transcript only contains exchanges that succeeded.
func (r *ChatRepository) AddMessage(articleID int64, question string, answer string, promptUsed, modelUsed *string) (*ChatMessage, error) {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO chat_history (article_id, question, answer, prompt_used, model_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, articleID, question, answer, promptUsed, modelUsed, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add chat message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get chat message id: %w", err)
	}

	return &ChatMessage{
		ID:         id,
		ArticleID:  articleID,
		Question:   question,
		Answer:     &answer,
		PromptUsed: promptUsed,
		ModelUsed:  modelUsed,
		CreatedAt:  now,
	}, nil
}

// GetHistory returns an article's chat transcript oldest first
func (r *ChatRepository) GetHistory(articleID int64) ([]ChatMessage, error) {
	rows, err := r.db.Query(`
		SELECT id, article_id, question, answer, prompt_used, model_used, created_at
		FROM chat_history
		WHERE article_id = ?
		ORDER BY created_at, id
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		err := rows.Scan(
			&msg.ID, &msg.ArticleID, &msg.Question, &msg.Answer,
			&msg.PromptUsed, &msg.ModelUsed, &msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat message rows: %w", err)
	}

	return messages, nil
}
