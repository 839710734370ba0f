package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("llm client not configured: missing API key")

// ChatTurn is one prior question/answer exchange replayed into a chat
// prompt for conversational context.
type ChatTurn struct {
	Question string
	Answer   string
}

// Client talks to the Gemini generateContent REST API
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Gemini API client. An empty key yields a client
// whose calls fail with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Summarize generates a summary of the article text. The template's
// {text} placeholder is substituted; templates without it fall back to
// the default summary prompt.
func (c *Client) Summarize(ctx context.Context, model, text, promptTemplate string) (string, error) {
	if !strings.Contains(promptTemplate, "{text}") {
		promptTemplate = DefaultSummaryPrompt
	}
	prompt := strings.ReplaceAll(promptTemplate, "{text}", text)

	return c.generate(ctx, model, prompt)
}

// GenerateTags asks the model for a comma-separated tag list and returns
// it normalized: split on commas, trimmed, lower-cased, empties dropped.
func (c *Client) GenerateTags(ctx context.Context, model, text, promptTemplate string) ([]string, error) {
	if !strings.Contains(promptTemplate, "{text}") {
		promptTemplate = DefaultTagGenerationPrompt
	}
	prompt := strings.ReplaceAll(promptTemplate, "{text}", text)

	response, err := c.generate(ctx, model, prompt)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, raw := range strings.Split(response, ",") {
		tag := strings.ToLower(strings.TrimSpace(raw))
		tag = strings.Trim(tag, `"`)
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags, nil
}

// Chat answers a question about an article. Prior turns are replayed as
// a plain transcript ahead of the prompt. When the article text is
// missing or too short to be real content, the no-article prompt is used
// instead so the model explains why it cannot answer.
func (c *Client) Chat(ctx context.Context, model, articleText, question string, history []ChatTurn, promptTemplate string) (string, error) {
	var prompt string
	if len(strings.TrimSpace(articleText)) < 20 {
		prompt = strings.ReplaceAll(DefaultChatNoArticlePrompt, "{question}", question)
	} else {
		if !strings.Contains(promptTemplate, "{question}") {
			promptTemplate = DefaultChatPrompt
		}
		prompt = strings.ReplaceAll(promptTemplate, "{article_text}", articleText)
		prompt = strings.ReplaceAll(prompt, "{question}", question)
	}

	if len(history) > 0 {
		var transcript strings.Builder
		transcript.WriteString("Previous conversation:\n")
		for _, turn := range history {
			transcript.WriteString("User: " + turn.Question + "\n")
			transcript.WriteString("Ai: " + turn.Answer + "\n")
		}
		transcript.WriteString("\n")
		prompt = transcript.String() + prompt
	}

	return c.generate(ctx, model, prompt)
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	return strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text), nil
}
