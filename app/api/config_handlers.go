package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"newsbrief/app/cfg"
	"newsbrief/app/database"
	"newsbrief/app/llm"
)

// GetConfig returns the effective application settings, with built-in
// defaults filling any missing or unparseable stored value.
func (h *Handler) GetConfig(c *gin.Context) {
	appCfg := cfg.Get()

	c.JSON(http.StatusOK, configResponse{
		SummaryModelName:        h.settings.GetString(database.SettingSummaryModelName, appCfg.SummaryModelName),
		ChatModelName:           h.settings.GetString(database.SettingChatModelName, appCfg.ChatModelName),
		TagModelName:            h.settings.GetString(database.SettingTagModelName, appCfg.TagModelName),
		ArticlesPerPage:         h.settings.GetInt(database.SettingArticlesPerPage, appCfg.PageSize),
		RSSFetchIntervalMinutes: h.settings.GetInt(database.SettingRSSFetchIntervalMinutes, 60),
		MinimumWordCount:        h.settings.GetInt(database.SettingMinimumWordCount, appCfg.MinimumWordCount),
		SummaryPrompt:           h.settings.GetString(database.SettingSummaryPrompt, llm.DefaultSummaryPrompt),
		ChatPrompt:              h.settings.GetString(database.SettingChatPrompt, llm.DefaultChatPrompt),
		TagGenerationPrompt:     h.settings.GetString(database.SettingTagGenerationPrompt, llm.DefaultTagGenerationPrompt),
	})
}

// UpdateConfig stores the provided settings wholesale. Only keys present
// in the request are touched; numeric values must be positive.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updates := make(map[string]string)

	setString := func(key string, value *string) {
		if value != nil {
			updates[key] = *value
		}
	}
	setString(database.SettingSummaryModelName, req.SummaryModelName)
	setString(database.SettingChatModelName, req.ChatModelName)
	setString(database.SettingTagModelName, req.TagModelName)
	setString(database.SettingSummaryPrompt, req.SummaryPrompt)
	setString(database.SettingChatPrompt, req.ChatPrompt)
	setString(database.SettingTagGenerationPrompt, req.TagGenerationPrompt)

	setInt := func(key string, value *int) bool {
		if value == nil {
			return true
		}
		if *value <= 0 {
			return false
		}
		updates[key] = strconv.Itoa(*value)
		return true
	}
	if !setInt(database.SettingArticlesPerPage, req.ArticlesPerPage) ||
		!setInt(database.SettingRSSFetchIntervalMinutes, req.RSSFetchIntervalMinutes) ||
		!setInt(database.SettingMinimumWordCount, req.MinimumWordCount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numeric settings must be positive"})
		return
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings provided"})
		return
	}

	if err := h.settings.ReplaceAll(updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store settings"})
		return
	}

	h.GetConfig(c)
}
