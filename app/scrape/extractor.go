package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ErrTooShort marks extractions that produced fewer characters than any
// real article body would have. The short text is still returned so
// callers can keep it alongside the error.
const ErrTooShort = "extracted content too short"

// ErrNoContent marks pages where nothing at all could be extracted
const ErrNoContent = "no content extracted"

const minExtractedChars = 100

var (
	newlineCollapseRegex = regexp.MustCompile(`\s*\n\s*`)
	spaceCollapseRegex   = regexp.MustCompile(`[ \t]{2,}`)
)

// ExtractContent runs readability extraction over rendered page HTML and
// normalizes the resulting plain text. Readability refuses sparse pages,
// so when it yields nothing the raw document text is used instead; the
// length check below still flags those as too short.
func ExtractContent(pageURL, html string) Result {
	result := Result{URL: pageURL}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		result.Err = fmt.Sprintf("invalid url: %v", err)
		return result
	}

	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil {
		result.Title = strings.TrimSpace(article.Title)
		result.Text = collapseWhitespace(article.TextContent)
		result.HTML = strings.TrimSpace(article.Content)
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	if docErr == nil {
		if result.Text == "" {
			result.Text = collapseWhitespace(documentText(doc))
		}
		if result.Title == "" {
			result.Title = strings.TrimSpace(doc.Find("title").First().Text())
		}
	}

	result.WordCount = len(strings.Fields(result.Text))

	if result.Text == "" && result.HTML == "" {
		result.Err = ErrNoContent
		return result
	}

	if len(result.Text) < minExtractedChars {
		result.Err = ErrTooShort
	}

	return result
}

// collapseWhitespace squeezes runs of blank lines into single newlines and
// runs of spaces/tabs into single spaces.
func collapseWhitespace(s string) string {
	s = newlineCollapseRegex.ReplaceAllString(s, "\n")
	s = spaceCollapseRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// documentText is the fallback body text for pages readability rejects
func documentText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text()
}
