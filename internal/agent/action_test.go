package agent

import "testing"

func TestDecodeAction_JSONSearch(t *testing.T) {
	a := DecodeAction(`{"action":"search","query":"golang generics"}`)
	if a.Kind != ActionSearch {
		t.Fatalf("expected search, got %s", a.Kind)
	}
	if a.Query != "golang generics" {
		t.Fatalf("expected query preserved, got %q", a.Query)
	}
}

func TestDecodeAction_JSONFinish(t *testing.T) {
	a := DecodeAction(`{"action":"finish","summary":"done"}`)
	if a.Kind != ActionFinish {
		t.Fatalf("expected finish, got %s", a.Kind)
	}
	if a.Summary != "done" {
		t.Fatalf("expected summary preserved, got %q", a.Summary)
	}
}

func TestDecodeAction_JSONActionCaseInsensitive(t *testing.T) {
	a := DecodeAction(`{"action":"FINISH","summary":"done"}`)
	if a.Kind != ActionFinish {
		t.Fatalf("expected finish, got %s", a.Kind)
	}
}

func TestDecodeAction_KeywordFinishWinsOverSearch(t *testing.T) {
	a := DecodeAction("I could search more, but I will finish now.")
	if a.Kind != ActionFinish {
		t.Fatalf("expected finish to take precedence, got %s", a.Kind)
	}
	if a.Summary == "" {
		t.Fatal("keyword finish should carry the raw output as summary")
	}
}

func TestDecodeAction_KeywordSearch(t *testing.T) {
	a := DecodeAction("let me search for more sources")
	if a.Kind != ActionSearch {
		t.Fatalf("expected search, got %s", a.Kind)
	}
}

func TestDecodeAction_UnknownJSONActionFallsBackToKeywords(t *testing.T) {
	a := DecodeAction(`{"action":"summarize","note":"then finish"}`)
	if a.Kind != ActionFinish {
		t.Fatalf("expected keyword fallback to finish, got %s", a.Kind)
	}
}

func TestDecodeAction_GibberishIsInvalid(t *testing.T) {
	a := DecodeAction("lorem ipsum dolor sit amet")
	if a.Kind != ActionInvalid {
		t.Fatalf("expected invalid, got %s", a.Kind)
	}
	if a.Raw == "" {
		t.Fatal("raw output should always be preserved")
	}
}

func TestDecodeAction_NeverPanicsOnEmpty(t *testing.T) {
	a := DecodeAction("")
	if a.Kind != ActionInvalid {
		t.Fatalf("expected invalid for empty input, got %s", a.Kind)
	}
}
