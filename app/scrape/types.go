package scrape

// Result is the outcome of fetching and extracting one URL. Failures are
// recorded in Err rather than returned as errors so a batch always yields
// one result per input URL.
type Result struct {
	URL       string
	Title     string
	Text      string
	HTML      string
	WordCount int
	Err       string
}

// OK reports whether the page yielded usable content
func (r Result) OK() bool {
	return r.Err == ""
}
