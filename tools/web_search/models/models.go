package models

// Result is one candidate search hit. Repeated URLs across searches within
// a run are tolerated, not deduplicated.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}
