package agent

import (
	"encoding/json"
	"strings"
)

// ActionKind tags the instruction decoded from model output.
type ActionKind string

const (
	ActionSearch  ActionKind = "search"
	ActionFinish  ActionKind = "finish"
	ActionInvalid ActionKind = "invalid"
)

// Action is the small typed instruction set the loop understands.
// Exactly one of Query/Summary is meaningful depending on Kind; Raw always
// carries the original model output.
type Action struct {
	Kind    ActionKind
	Query   string
	Summary string
	Raw     string
}

// DecodeAction interprets raw model output as an Action. It never fails:
// a strict JSON parse is attempted first, then keyword heuristics ("finish"
// before "search" so a terminal intent wins), and anything else decodes to
// ActionInvalid.
func DecodeAction(raw string) Action {
	var payload struct {
		Action  string `json:"action"`
		Query   string `json:"query"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err == nil {
		switch strings.ToLower(strings.TrimSpace(payload.Action)) {
		case "search":
			return Action{Kind: ActionSearch, Query: payload.Query, Raw: raw}
		case "finish":
			return Action{Kind: ActionFinish, Summary: payload.Summary, Raw: raw}
		}
		// valid JSON with an unknown action falls through to the heuristics
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "finish") {
		return Action{Kind: ActionFinish, Summary: raw, Raw: raw}
	}
	if strings.Contains(lower, "search") {
		return Action{Kind: ActionSearch, Query: raw, Raw: raw}
	}
	return Action{Kind: ActionInvalid, Raw: raw}
}
