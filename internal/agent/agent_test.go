package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/internal/report"
	"github.com/scourbot/scour/models"
	"github.com/scourbot/scour/provider"
	fetchmodels "github.com/scourbot/scour/tools/web_fetch/models"
	searchmodels "github.com/scourbot/scour/tools/web_search/models"
)

// scriptedOracle replays canned responses in call order.
type scriptedOracle struct {
	responses []string
	calls     int
}

func (o *scriptedOracle) Chat(ctx context.Context, messages []models.Message) (string, error) {
	o.calls++
	if len(o.responses) == 0 {
		return "", errors.New("oracle script exhausted")
	}
	resp := o.responses[0]
	o.responses = o.responses[1:]
	return resp, nil
}

// loopingOracle returns the same response forever.
type loopingOracle struct {
	response string
	calls    int
}

func (o *loopingOracle) Chat(ctx context.Context, messages []models.Message) (string, error) {
	o.calls++
	return o.response, nil
}

type recordingSearcher struct {
	results []searchmodels.Result
	queries []string
	ks      []int
	err     error
}

func (s *recordingSearcher) Discover(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	s.queries = append(s.queries, q)
	s.ks = append(s.ks, k)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (f *mapFetcher) Exec(ctx context.Context, url string) (fetchmodels.Result, error) {
	f.calls = append(f.calls, url)
	text, ok := f.pages[url]
	if !ok {
		return fetchmodels.Result{URL: url, Status: 599, Attempts: 3}, nil
	}
	return fetchmodels.Result{URL: url, Text: text, Status: 200, Attempts: 1}, nil
}

type recordingSink struct {
	renders int
	blocks  []report.Block
	err     error
}

func (s *recordingSink) Render(blocks []report.Block, target string) error {
	s.renders++
	s.blocks = blocks
	return s.err
}

func newTestAgent(t *testing.T, oracle provider.Provider, searcher *recordingSearcher, fetcher *mapFetcher, sink *recordingSink, maxIterations int) *Agent {
	t.Helper()
	assembler := report.NewAssembler(sink, t.TempDir())
	return New(config.AgentConfig{MaxIterations: maxIterations}, oracle, searcher, fetcher, assembler)
}

func collectEvents() (func(string), *[]string) {
	var events []string
	return func(msg string) { events = append(events, msg) }, &events
}

func TestRun_FinishProducesReport(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{`{"action":"finish","summary":"All questions answered."}`}}
	sink := &recordingSink{}
	ag := newTestAgent(t, oracle, &recordingSearcher{}, &mapFetcher{}, sink, 5)
	emit, events := collectEvents()

	out := ag.Run(context.Background(), "explain generics", 3, emit, nil)

	if out.Terminal != TerminalFinished {
		t.Fatalf("expected finished, got %s", out.Terminal)
	}
	if !out.HasArtifact {
		t.Fatal("expected an artifact")
	}
	if sink.renders != 1 {
		t.Fatalf("expected exactly one render, got %d", sink.renders)
	}
	if out.Summary != "All questions answered." {
		t.Fatalf("unexpected summary %q", out.Summary)
	}
	last := (*events)[len(*events)-1]
	if !strings.HasPrefix(last, "Report ready: ") {
		t.Fatalf("expected terminal report event, got %q", last)
	}
}

func TestRun_BudgetExhaustedStillWritesOneReport(t *testing.T) {
	oracle := &loopingOracle{response: `{"action":"search","query":"more"}`}
	searcher := &recordingSearcher{} // zero results every time
	sink := &recordingSink{}
	ag := newTestAgent(t, oracle, searcher, &mapFetcher{}, sink, 3)
	emit, events := collectEvents()

	out := ag.Run(context.Background(), "some task", 3, emit, nil)

	if out.Terminal != TerminalExhausted {
		t.Fatalf("expected exhausted, got %s", out.Terminal)
	}
	if sink.renders != 1 {
		t.Fatalf("expected exactly one render, got %d", sink.renders)
	}
	if len(searcher.queries) != 3 {
		t.Fatalf("expected one Discover per iteration, got %d", len(searcher.queries))
	}
	var placeholder bool
	for _, b := range sink.blocks {
		if b.Kind == report.ParagraphBlock && b.Text == "No complete result." {
			placeholder = true
		}
	}
	if !placeholder {
		t.Fatal("exhausted run should carry the fallback summary")
	}
	var exhaustedEvent bool
	for _, e := range *events {
		if strings.Contains(e, "budget exhausted") {
			exhaustedEvent = true
		}
	}
	if !exhaustedEvent {
		t.Fatal("expected a budget exhaustion event")
	}
}

func TestRun_FindingsKeepResultOrder(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		`{"action":"search","query":"golang generics"}`,
		"- first page bullets",
		"- second page bullets",
		`{"action":"finish","summary":"done"}`,
	}}
	searcher := &recordingSearcher{results: []searchmodels.Result{
		{Title: "First", URL: "https://a.example/1", Snippet: "sa"},
		{Title: "Second", URL: "https://b.example/2", Snippet: "sb"},
	}}
	fetcher := &mapFetcher{pages: map[string]string{
		"https://a.example/1": strings.Repeat("alpha ", 100),
		"https://b.example/2": strings.Repeat("beta ", 100),
	}}
	sink := &recordingSink{}
	ag := newTestAgent(t, oracle, searcher, fetcher, sink, 5)
	emit, _ := collectEvents()

	out := ag.Run(context.Background(), "explain generics", 2, emit, nil)

	if len(out.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(out.Findings))
	}
	if out.Findings[0].URL != "https://a.example/1" || out.Findings[1].URL != "https://b.example/2" {
		t.Fatalf("findings out of order: %+v", out.Findings)
	}
	if out.Findings[0].Summary != "- first page bullets" {
		t.Fatalf("unexpected condensed summary %q", out.Findings[0].Summary)
	}
	if len(searcher.queries) != 1 || searcher.queries[0] != "golang generics" {
		t.Fatalf("Discover should receive the decoded query once, got %v", searcher.queries)
	}
	if searcher.ks[0] != 2 {
		t.Fatalf("Discover should receive the result cap, got %d", searcher.ks[0])
	}
}

func TestRun_FetchFailureFallsBackToSnippet(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		`{"action":"search","query":"q"}`,
		`{"action":"finish","summary":"done"}`,
	}}
	searcher := &recordingSearcher{results: []searchmodels.Result{
		{Title: "Dead page", URL: "https://dead.example/", Snippet: "the snippet survives"},
	}}
	sink := &recordingSink{}
	ag := newTestAgent(t, oracle, searcher, &mapFetcher{}, sink, 5)
	emit, _ := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if len(out.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(out.Findings))
	}
	if out.Findings[0].Summary != "the snippet survives" {
		t.Fatalf("expected snippet fallback, got %q", out.Findings[0].Summary)
	}
}

func TestRun_CondenseFailureUsesLiteralExcerpt(t *testing.T) {
	page := strings.Repeat("x", 2000)
	oracle := &scriptedOracle{responses: []string{
		`{"action":"search","query":"q"}`,
		"", // condense degrades to empty
		`{"action":"finish","summary":"done"}`,
	}}
	searcher := &recordingSearcher{results: []searchmodels.Result{
		{Title: "Page", URL: "https://p.example/", Snippet: "s"},
	}}
	fetcher := &mapFetcher{pages: map[string]string{"https://p.example/": page}}
	ag := newTestAgent(t, oracle, searcher, fetcher, &recordingSink{}, 5)
	emit, _ := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if len(out.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(out.Findings))
	}
	if got := out.Findings[0].Summary; got != page[:literalFallbackChars] {
		t.Fatalf("expected literal excerpt of %d chars, got %d", literalFallbackChars, len(got))
	}
}

func TestRun_EmptyQueryFallsBackToTask(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		`{"action":"search","query":"  "}`,
		`{"action":"finish","summary":"done"}`,
	}}
	searcher := &recordingSearcher{}
	ag := newTestAgent(t, oracle, searcher, &mapFetcher{}, &recordingSink{}, 5)
	emit, _ := collectEvents()

	ag.Run(context.Background(), "the original task", 1, emit, nil)

	if len(searcher.queries) != 1 || searcher.queries[0] != "the original task" {
		t.Fatalf("expected task as fallback query, got %v", searcher.queries)
	}
}

func TestRun_OracleSilenceAborts(t *testing.T) {
	oracle := &scriptedOracle{} // errors immediately, chat degrades to ""
	sink := &recordingSink{}
	ag := newTestAgent(t, oracle, &recordingSearcher{}, &mapFetcher{}, sink, 5)
	emit, events := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if out.Terminal != TerminalAborted {
		t.Fatalf("expected aborted, got %s", out.Terminal)
	}
	if sink.renders != 1 {
		t.Fatalf("aborted runs still write one report, got %d renders", sink.renders)
	}
	if (*events)[0] != "Model is not responding." {
		t.Fatalf("unexpected first event %q", (*events)[0])
	}
}

func TestRun_InvalidActionAborts(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{"lorem ipsum dolor"}}
	searcher := &recordingSearcher{}
	sink := &recordingSink{}
	ag := newTestAgent(t, oracle, searcher, &mapFetcher{}, sink, 5)
	emit, _ := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if out.Terminal != TerminalAborted {
		t.Fatalf("expected aborted, got %s", out.Terminal)
	}
	if len(searcher.queries) != 0 {
		t.Fatal("invalid action must not trigger a search")
	}
	if sink.renders != 1 {
		t.Fatalf("expected exactly one render, got %d", sink.renders)
	}
}

func TestRun_RenderFailureYieldsNoArtifact(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{`{"action":"finish","summary":"done"}`}}
	sink := &recordingSink{err: errors.New("disk full")}
	ag := newTestAgent(t, oracle, &recordingSearcher{}, &mapFetcher{}, sink, 5)
	emit, events := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if out.HasArtifact {
		t.Fatal("render failure must not produce an artifact")
	}
	last := (*events)[len(*events)-1]
	if !strings.Contains(last, "no artifact") {
		t.Fatalf("expected failure event last, got %q", last)
	}
}

func TestRun_RepeatedURLYieldsFindingPerOccurrence(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		`{"action":"search","query":"first"}`,
		"- bullets",
		`{"action":"search","query":"second"}`,
		"- bullets again",
		`{"action":"finish","summary":"done"}`,
	}}
	searcher := &recordingSearcher{results: []searchmodels.Result{
		{Title: "Same", URL: "https://same.example/page", Snippet: "s"},
	}}
	fetcher := &mapFetcher{pages: map[string]string{
		"https://same.example/page": strings.Repeat("text ", 100),
	}}
	ag := newTestAgent(t, oracle, searcher, fetcher, &recordingSink{}, 5)
	emit, _ := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if len(fetcher.calls) != 2 {
		t.Fatalf("a repeated source is fetched again, got %d fetches", len(fetcher.calls))
	}
	if len(out.Findings) != 2 {
		t.Fatalf("expected 2 findings for the repeated URL, got %d", len(out.Findings))
	}
	if out.Findings[0].URL != out.Findings[1].URL {
		t.Fatalf("both findings should cite the same URL: %+v", out.Findings)
	}
}

func TestRun_PersistRunsBeforeTerminalEvent(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{`{"action":"finish","summary":"done"}`}}
	ag := newTestAgent(t, oracle, &recordingSearcher{}, &mapFetcher{}, &recordingSink{}, 5)
	emit, events := collectEvents()

	var eventsAtPersist int
	persisted := false
	out := ag.Run(context.Background(), "task", 1, emit, func(a models.Artifact) {
		persisted = true
		eventsAtPersist = len(*events)
	})

	if !persisted {
		t.Fatal("persist hook was not invoked")
	}
	if !out.HasArtifact {
		t.Fatal("expected an artifact")
	}
	for _, e := range (*events)[:eventsAtPersist] {
		if strings.HasPrefix(e, "Report ready: ") {
			t.Fatal("terminal event observable before persist ran")
		}
	}
	last := (*events)[len(*events)-1]
	if !strings.HasPrefix(last, "Report ready: ") {
		t.Fatalf("expected terminal report event last, got %q", last)
	}
}

func TestFirstN_NeverSplitsRunes(t *testing.T) {
	s := strings.Repeat("é", 400) // 2 bytes per rune
	got := firstN(s, 501)
	if len(got) != 500 {
		t.Fatalf("expected cut at rune boundary (500 bytes), got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation produced invalid UTF-8")
	}
	if firstN("short", 500) != "short" {
		t.Fatal("strings within the bound pass through unchanged")
	}
}

func TestRun_SearchErrorContinuesLoop(t *testing.T) {
	oracle := &scriptedOracle{responses: []string{
		`{"action":"search","query":"q"}`,
		`{"action":"finish","summary":"done"}`,
	}}
	searcher := &recordingSearcher{err: errors.New("network down")}
	ag := newTestAgent(t, oracle, searcher, &mapFetcher{}, &recordingSink{}, 5)
	emit, _ := collectEvents()

	out := ag.Run(context.Background(), "task", 1, emit, nil)

	if out.Terminal != TerminalFinished {
		t.Fatalf("a failed search should not end the run, got %s", out.Terminal)
	}
	if len(out.Findings) != 0 {
		t.Fatalf("expected no findings, got %d", len(out.Findings))
	}
}
