package database

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Setting keys used across the application
const (
	SettingSummaryModelName        = "summary_model_name"
	SettingChatModelName           = "chat_model_name"
	SettingTagModelName            = "tag_model_name"
	SettingArticlesPerPage         = "articles_per_page"
	SettingRSSFetchIntervalMinutes = "rss_fetch_interval_minutes"
	SettingMinimumWordCount        = "minimum_word_count"
	SettingSummaryPrompt           = "summary_prompt"
	SettingChatPrompt              = "chat_prompt"
	SettingTagGenerationPrompt     = "tag_generation_prompt"
)

// SettingsRepository handles the key/value application settings table
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// SeedDefaults inserts any missing keys without touching existing values
func (r *SettingsRepository) SeedDefaults(defaults map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range defaults {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)
		`, key, value); err != nil {
			return fmt.Errorf("failed to seed setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings seed: %w", err)
	}

	return nil
}

// GetAll returns every stored setting
func (r *SettingsRepository) GetAll() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}

	return settings, nil
}

// Get returns one setting value, or empty string when absent
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// GetString returns a setting, falling back to the given default when the
// key is missing or empty.
func (r *SettingsRepository) GetString(key, fallback string) string {
	value, err := r.Get(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

// GetInt returns a setting parsed as a positive integer, falling back to
// the given default when missing or unparseable.
func (r *SettingsRepository) GetInt(key string, fallback int) int {
	value, err := r.Get(key)
	if err != nil || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// ReplaceAll overwrites the given settings keys wholesale
func (r *SettingsRepository) ReplaceAll(settings map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range settings {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("failed to store setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings update: %w", err)
	}

	return nil
}
