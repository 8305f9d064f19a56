package models

import "time"

// Roles for conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a role-tagged message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Finding is one condensed, sourced fact unit accumulated during a run.
// Findings keep append order; that order is the presentation order in the
// final report.
type Finding struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Artifact identifies one produced report file.
type Artifact struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}
