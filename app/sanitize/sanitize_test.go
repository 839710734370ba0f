package sanitize

import (
	"strings"
	"testing"
)

func TestHTMLKeepsAllowedMarkup(t *testing.T) {
	in := `<h2>Heading</h2><p>Some <strong>bold</strong> and <em>italic</em> text.</p>
<ul><li>one</li><li>two</li></ul>
<blockquote>quoted</blockquote>
<table><thead><tr><th>h</th></tr></thead><tbody><tr><td>d</td></tr></tbody></table>
<figure><img src="https://example.com/pic.jpg" alt="pic"><figcaption>caption</figcaption></figure>`

	out := HTML(in)

	for _, want := range []string{"<h2>", "<strong>", "<em>", "<ul>", "<li>", "<blockquote>", "<table>", "<figure>", "<figcaption>", `src="https://example.com/pic.jpg"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s to survive sanitization", want)
		}
	}
}

func TestHTMLStripsScripts(t *testing.T) {
	in := `<p>fine</p><script>alert("xss")</script><iframe src="https://evil.example"></iframe>
<p onclick="steal()">click</p><a href="javascript:alert(1)">link</a>`

	out := HTML(in)

	for _, banned := range []string{"<script", "<iframe", "onclick", "javascript:"} {
		if strings.Contains(out, banned) {
			t.Errorf("expected %s to be stripped", banned)
		}
	}
	if !strings.Contains(out, "<p>fine</p>") {
		t.Error("expected safe content to survive")
	}
}

func TestHTMLAllowedSchemes(t *testing.T) {
	out := HTML(`<a href="https://example.com">web</a><a href="mailto:x@example.com">mail</a><a href="ftp://files.example.com">ftp</a>`)

	for _, want := range []string{`href="https://example.com"`, `href="mailto:x@example.com"`, `href="ftp://files.example.com"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s to survive", want)
		}
	}
}
