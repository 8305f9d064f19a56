package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/internal/agent"
	"github.com/scourbot/scour/internal/artifact/inmemory"
	"github.com/scourbot/scour/internal/report"
	"github.com/scourbot/scour/models"
	fetchmodels "github.com/scourbot/scour/tools/web_fetch/models"
	searchmodels "github.com/scourbot/scour/tools/web_search/models"
)

type finishOracle struct{}

func (finishOracle) Chat(ctx context.Context, messages []models.Message) (string, error) {
	return `{"action":"finish","summary":"done"}`, nil
}

type nopSearcher struct{}

func (nopSearcher) Discover(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	return nil, nil
}

type nopFetcher struct{}

func (nopFetcher) Exec(ctx context.Context, url string) (fetchmodels.Result, error) {
	return fetchmodels.Result{URL: url, Status: 599}, nil
}

type nopSink struct{}

func (nopSink) Render(blocks []report.Block, target string) error { return nil }

func newTestManager(t *testing.T) (*Manager, *inmemory.Registry) {
	t.Helper()
	reg := inmemory.NewRegistry().(*inmemory.Registry)
	assembler := report.NewAssembler(nopSink{}, t.TempDir())
	ag := agent.New(config.AgentConfig{MaxIterations: 3}, finishOracle{}, nopSearcher{}, nopFetcher{}, assembler)
	return NewManager(ag, reg, 3), reg
}

func drain(t *testing.T, s *Session) []string {
	t.Helper()
	var events []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, open := <-s.Events():
			if !open {
				return events
			}
			events = append(events, msg)
		case <-timeout:
			t.Fatal("event stream did not close")
		}
	}
}

func TestManager_StartRunsToCompletion(t *testing.T) {
	m, reg := newTestManager(t)
	s := m.Start("what is dark matter", 0)
	if s.ID() == "" {
		t.Fatal("session should have a run ID")
	}

	events := drain(t, s)
	if len(events) == 0 {
		t.Fatal("expected progress events")
	}
	last := events[len(events)-1]
	if !strings.HasPrefix(last, "Report ready: ") {
		t.Fatalf("expected terminal report event, got %q", last)
	}

	<-s.Done()
	a, ok := s.Artifact()
	if !ok {
		t.Fatal("completed run should expose its artifact")
	}
	rec, ok, err := reg.ByRun(context.Background(), s.ID())
	if err != nil || !ok {
		t.Fatalf("registry missing run artifact: ok=%v err=%v", ok, err)
	}
	if rec.ID != a.ID {
		t.Fatalf("registry artifact %q, session artifact %q", rec.ID, a.ID)
	}
}

func TestManager_GetResolvesRunID(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.Start("task", 0)
	got, ok := m.Get(s.ID())
	if !ok || got != s {
		t.Fatal("Get should resolve the started session")
	}
	if _, ok := m.Get("nope"); ok {
		t.Fatal("unknown run ID should not resolve")
	}
	<-s.Done()
}

func TestManager_ArtifactResolvableWhenTerminalEventArrives(t *testing.T) {
	m, reg := newTestManager(t)
	s := m.Start("task", 0)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case msg, open := <-s.Events():
			if !open {
				t.Fatal("stream closed without a report event")
			}
			if !strings.HasPrefix(msg, "Report ready: ") {
				continue
			}
			// The report event is out; the registry must already resolve.
			if _, ok, err := reg.ByRun(context.Background(), s.ID()); err != nil || !ok {
				t.Fatalf("artifact not recorded before report event: ok=%v err=%v", ok, err)
			}
			if _, ok := s.Artifact(); !ok {
				t.Fatal("session artifact not set before report event")
			}
			<-s.Done()
			return
		case <-timeout:
			t.Fatal("no report event")
		}
	}
}

func TestSession_EmitNeverBlocks(t *testing.T) {
	s := &Session{events: make(chan string, 2)}
	for i := 0; i < 10; i++ {
		s.Emit("event") // overflow is dropped, not blocking
	}
	if len(s.events) != 2 {
		t.Fatalf("expected buffer full at 2, got %d", len(s.events))
	}
}
