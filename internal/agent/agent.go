// Package agent drives the research loop: it interprets model output as
// actions, gathers and condenses page content, and terminates into a
// report artifact.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/internal/report"
	"github.com/scourbot/scour/internal/telemetry"
	"github.com/scourbot/scour/models"
	"github.com/scourbot/scour/provider"
	"github.com/scourbot/scour/tools/web_fetch"
	"github.com/scourbot/scour/tools/web_search"
)

const systemPrompt = `You are a research agent. ALWAYS answer in JSON.
Actions:
1. {"action":"search","query":"..."} -> run a web search when you need more information.
2. {"action":"finish","summary":"..."} -> when you have gathered enough information.

Rules:
- Plan several searches if necessary.
- Use the knowledge from already loaded pages.
- Never write free text outside the JSON.`

const condensePrompt = "Condense the text into at most 5 concise bullet points."

// Content bounds for the condense step.
const (
	condenseInputChars   = 5000
	literalFallbackChars = 500
)

// Terminal states of a run.
const (
	TerminalFinished  = "finished"
	TerminalExhausted = "exhausted"
	TerminalAborted   = "aborted"
)

// Outcome is what a completed loop hands back: the terminal summary, the
// findings in append order, and the artifact reference (zero when
// rendering failed).
type Outcome struct {
	Terminal    string
	Summary     string
	Findings    []models.Finding
	Artifact    models.Artifact
	HasArtifact bool
}

// Agent owns one research pipeline configuration. It is safe for
// concurrent Run calls; all per-run state lives on the stack.
type Agent struct {
	cfg       config.AgentConfig
	oracle    provider.Provider
	searcher  web_search.WebSearcher
	fetcher   web_fetch.WebFetcher
	assembler *report.Assembler
	logger    *log.Logger
}

func New(cfg config.AgentConfig, oracle provider.Provider, searcher web_search.WebSearcher, fetcher web_fetch.WebFetcher, assembler *report.Assembler) *Agent {
	return &Agent{
		cfg:       cfg.Normalize(),
		oracle:    oracle,
		searcher:  searcher,
		fetcher:   fetcher,
		assembler: assembler,
		logger:    log.New(log.Writer(), "[AGENT] ", log.LstdFlags),
	}
}

// Run executes one research task to termination and always invokes the
// report assembler exactly once, whatever path ended the loop. Progress is
// pushed through emit; emit must not block. persist, when non-nil, runs
// after the artifact is written and before the terminal event, so a
// subscriber reacting to that event can already resolve the artifact.
func (a *Agent) Run(ctx context.Context, task string, maxResults int, emit func(string), persist func(models.Artifact)) Outcome {
	telemetry.RunsStarted.Inc()

	base := []models.Message{
		{Role: models.RoleSystem, Content: systemPrompt},
		{Role: models.RoleUser, Content: "Task: " + task},
	}
	var notes []models.Message
	var findings []models.Finding
	summary := ""
	terminal := TerminalExhausted

loop:
	for iter := 0; iter < a.cfg.MaxIterations; iter++ {
		resp := a.chat(ctx, append(append([]models.Message{}, base...), notes...))
		if resp == "" {
			emit("Model is not responding.")
			terminal = TerminalAborted
			break
		}
		action := DecodeAction(resp)
		switch action.Kind {
		case ActionSearch:
			notes = a.searchPhase(ctx, task, action, maxResults, &findings, notes, emit)
		case ActionFinish:
			summary = action.Summary
			emit("Final summary ready.")
			terminal = TerminalFinished
			break loop
		default:
			// Strict policy: an action the loop cannot interpret aborts the
			// run rather than burning budget on re-decides.
			emit("Invalid action from model; stopping.")
			terminal = TerminalAborted
			break loop
		}
	}
	if terminal == TerminalExhausted {
		emit("Iteration budget exhausted; writing partial report.")
	}

	outcome := Outcome{Terminal: terminal, Summary: summary, Findings: findings}
	artifact, err := a.assembler.Assemble(task, summary, findings)
	if err != nil {
		emit("Report rendering failed; no artifact is available.")
	} else {
		outcome.Artifact = artifact
		outcome.HasArtifact = true
		if persist != nil {
			persist(artifact)
		}
		emit("Report ready: " + artifact.ID)
	}
	telemetry.RunsCompleted.WithLabelValues(terminal).Inc()
	return outcome
}

// searchPhase runs one search action: discover, fetch, condense, append
// findings in result order, then record a bounded knowledge note.
func (a *Agent) searchPhase(ctx context.Context, task string, action Action, maxResults int, findings *[]models.Finding, notes []models.Message, emit func(string)) []models.Message {
	query := strings.TrimSpace(action.Query)
	if query == "" {
		query = task
	}
	emit("Searching for: " + query)
	telemetry.Searches.Inc()

	results, err := a.searcher.Discover(ctx, query, maxResults)
	if err != nil {
		a.logger.Printf("search failed for %q: %v", query, err)
		results = nil
	}
	// Repeated URLs across searches are fetched again, not collapsed; each
	// occurrence contributes its own finding.
	for _, r := range results {
		emit(fmt.Sprintf("Loading page: %s (%s)", r.Title, r.URL))
		telemetry.Fetches.Inc()
		res, err := a.fetcher.Exec(ctx, r.URL)
		if err != nil || res.Text == "" {
			telemetry.FetchFailures.Inc()
			// Degraded finding: the search snippet stands in for content.
			*findings = append(*findings, models.Finding{Title: r.Title, URL: r.URL, Summary: r.Snippet})
			emit("Using search snippet for " + r.Title)
			continue
		}
		condensed := a.chat(ctx, []models.Message{
			{Role: models.RoleSystem, Content: condensePrompt},
			{Role: models.RoleUser, Content: firstN(res.Text, condenseInputChars)},
		})
		if condensed == "" {
			condensed = firstN(res.Text, literalFallbackChars)
		}
		*findings = append(*findings, models.Finding{Title: r.Title, URL: r.URL, Summary: condensed})
		emit("Summary ready: " + r.Title)
	}

	notes = append(notes, models.Message{
		Role:    models.RoleUser,
		Content: fmt.Sprintf("New knowledge added: %d sources for query %q.", len(results), query),
	})
	// Keep the oracle context bounded: system prompt and task stay, only
	// the most recent knowledge notes survive.
	if len(notes) > a.cfg.HistoryKeep {
		notes = notes[len(notes)-a.cfg.HistoryKeep:]
	}
	return notes
}

// chat calls the oracle and degrades every failure mode to an empty
// string; callers supply literal fallbacks.
func (a *Agent) chat(ctx context.Context, messages []models.Message) string {
	resp, err := a.oracle.Chat(ctx, messages)
	if err != nil {
		a.logger.Printf("oracle call failed: %v", err)
		return ""
	}
	return strings.TrimSpace(resp)
}

// firstN truncates to at most n bytes without splitting a UTF-8 rune.
func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
