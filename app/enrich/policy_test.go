package enrich

import (
	"testing"

	"newsbrief/app/database"
)

const minWords = 100

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func article(text, html *string, wordCount *int) *database.Article {
	return &database.Article{
		ID:          1,
		URL:         "https://example.com/article",
		TextContent: text,
		HTMLContent: html,
		WordCount:   wordCount,
	}
}

func TestNeedsScrapeTruthTable(t *testing.T) {
	fullText := strPtr("a complete article body")
	fullHTML := strPtr("<p>a complete article body</p>")

	cases := []struct {
		name    string
		article *database.Article
		want    bool
	}{
		{"everything present", article(fullText, fullHTML, intPtr(500)), false},
		{"text missing", article(nil, fullHTML, nil), true},
		{"text empty", article(strPtr("   "), fullHTML, nil), true},
		{"html missing", article(fullText, nil, intPtr(500)), true},
		{"both missing", article(nil, nil, nil), true},
		{"unknown word count with content", article(fullText, fullHTML, nil), false},
		{"sentinel never retried", article(strPtr(database.ScrapingErrorPrefix+" net timeout"), nil, intPtr(0)), false},
		{"content sentinel never retried", article(strPtr(database.ContentErrorPrefix+" too short"), nil, intPtr(0)), false},
		{"below gate not refetched", article(fullText, fullHTML, intPtr(20)), false},
		{"below gate html missing still skipped", article(fullText, nil, intPtr(20)), false},
		{"at gate exactly", article(fullText, fullHTML, intPtr(minWords)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsScrape(tc.article, minWords); got != tc.want {
				t.Errorf("NeedsScrape = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNeedsForceScrape(t *testing.T) {
	fullText := strPtr("a complete article body")
	fullHTML := strPtr("<p>a complete article body</p>")

	cases := []struct {
		name    string
		article *database.Article
		want    bool
	}{
		{"everything present", article(fullText, fullHTML, intPtr(500)), false},
		{"text missing", article(nil, fullHTML, nil), true},
		{"html missing", article(fullText, nil, intPtr(500)), true},
		{"sentinel gets another chance", article(strPtr(database.ScrapingErrorPrefix+" net timeout"), nil, intPtr(0)), true},
		{"thin article gets another chance", article(fullText, fullHTML, intPtr(20)), true},
		{"at gate exactly", article(fullText, fullHTML, intPtr(minWords)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsForceScrape(tc.article, minWords); got != tc.want {
				t.Errorf("NeedsForceScrape = %v, want %v", got, tc.want)
			}
		})
	}
}

// Every combination of {sentinel text}, {word count below/above gate},
// {text present/absent} against the summarizability rule.
func TestIsSummarizableTruthTable(t *testing.T) {
	cases := []struct {
		name    string
		article *database.Article
		want    bool
	}{
		{"real text, good count", article(strPtr("body"), nil, intPtr(500)), true},
		{"real text, unknown count", article(strPtr("body"), nil, nil), true},
		{"real text, thin", article(strPtr("body"), nil, intPtr(5)), false},
		{"empty text", article(strPtr(""), nil, intPtr(500)), false},
		{"whitespace text", article(strPtr("  \n "), nil, nil), false},
		{"no text", article(nil, nil, nil), false},
		{"scraping sentinel", article(strPtr(database.ScrapingErrorPrefix+" boom"), nil, intPtr(0)), false},
		{"content sentinel", article(strPtr(database.ContentErrorPrefix+" empty"), nil, intPtr(0)), false},
		{"sentinel with high count stays blocked", article(strPtr(database.ScrapingErrorPrefix+" boom"), nil, intPtr(500)), false},
		{"at gate exactly", article(strPtr("body"), nil, intPtr(minWords)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSummarizable(tc.article, minWords); got != tc.want {
				t.Errorf("IsSummarizable = %v, want %v", got, tc.want)
			}
		})
	}
}
