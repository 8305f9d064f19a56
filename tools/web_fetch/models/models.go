package models

// Result is the outcome of one fetch pipeline invocation. Empty Text with a
// synthetic Status signals total failure; callers degrade to the search
// snippet instead of treating it as an error.
type Result struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Status   int    `json:"status"`
	Attempts int    `json:"attempts"`
	FetchMS  int    `json:"fetch_ms"`
}
