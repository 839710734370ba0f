package scrape

import (
	"strings"
	"testing"
)

func articleHTML(title, body string) string {
	return `<html><head><title>` + title + `</title></head><body>
		<article><h1>` + title + `</h1>` + body + `</article>
	</body></html>`
}

func TestExtractContentCollapsesWhitespace(t *testing.T) {
	body := `<p>First   sentence    with    gaps.</p>
		<p>` + strings.Repeat("word ", 80) + `</p>

		<p>Closing	paragraph		here.</p>`

	result := ExtractContent("https://example.com/article", articleHTML("Spacing", body))

	if !result.OK() {
		t.Fatalf("expected successful extraction, got error %q", result.Err)
	}
	if strings.Contains(result.Text, "  ") {
		t.Error("expected runs of spaces to collapse to one")
	}
	if strings.Contains(result.Text, "\n\n") {
		t.Error("expected blank lines to collapse to single newlines")
	}
	if strings.HasPrefix(result.Text, " ") || strings.HasSuffix(result.Text, " ") {
		t.Error("expected text to be trimmed")
	}
}

func TestExtractContentWordCount(t *testing.T) {
	body := "<p>" + strings.Repeat("alpha beta gamma delta epsilon ", 30) + "</p>"

	result := ExtractContent("https://example.com/article", articleHTML("Counting", body))

	if !result.OK() {
		t.Fatalf("expected successful extraction, got error %q", result.Err)
	}
	if want := len(strings.Fields(result.Text)); result.WordCount != want {
		t.Errorf("expected word count %d, got %d", want, result.WordCount)
	}
	if result.WordCount < 150 {
		t.Errorf("expected at least 150 words, got %d", result.WordCount)
	}
}

func TestExtractContentTooShortKeepsText(t *testing.T) {
	result := ExtractContent("https://example.com/stub",
		articleHTML("Stub", "<p>Just a teaser line.</p>"))

	if result.Err != ErrTooShort {
		t.Fatalf("expected %q, got %q", ErrTooShort, result.Err)
	}
	if result.Text == "" {
		t.Error("expected the short text to be returned alongside the error")
	}
	if result.WordCount == 0 {
		t.Error("expected a word count for the short text")
	}
}

func TestExtractContentEmptyPage(t *testing.T) {
	result := ExtractContent("https://example.com/empty", "<html><body></body></html>")

	if result.OK() {
		t.Fatal("expected an error for a page with no content")
	}
}

func TestExtractContentInvalidURL(t *testing.T) {
	result := ExtractContent("://not-a-url", "<html><body><p>text</p></body></html>")

	if result.OK() {
		t.Fatal("expected an error for an unparseable URL")
	}
}
