// Package sanitize strips unsafe markup from article HTML before it is
// served. Sanitization happens only at the presentation boundary; stored
// content is kept as extracted.
package sanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "b", "strong", "i", "em", "u", "s", "strike", "del",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "dd", "dt",
		"a", "img", "blockquote", "code", "pre",
		"table", "thead", "tbody", "tr", "th", "td",
		"figure", "figcaption",
	)

	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("class", "id").Globally()

	p.AllowURLSchemes("http", "https", "mailto", "ftp")
	p.RequireNoFollowOnLinks(false)

	return p
}

// HTML returns the sanitized form of the given article HTML
func HTML(raw string) string {
	return policy.Sanitize(raw)
}
