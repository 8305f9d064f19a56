// Package session binds research task invocations to live event streams
// and the artifacts they produce.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/scourbot/scour/internal/agent"
	"github.com/scourbot/scour/internal/artifact/registry"
	"github.com/scourbot/scour/models"
)

// eventBuffer bounds the progress channel. Events are informational and
// droppable; a slow consumer never blocks the producing loop.
const eventBuffer = 64

// Session is one run's handle: an ordered event stream, closed after the
// terminal event, plus the artifact reference once the run completed.
type Session struct {
	id     string
	task   string
	events chan string
	done   chan struct{}

	mu          sync.Mutex
	artifact    models.Artifact
	hasArtifact bool
}

func (s *Session) ID() string   { return s.id }
func (s *Session) Task() string { return s.task }

// Events returns the stream read by a single subscriber. Each event is
// delivered at most once; the channel closes after the terminal event.
func (s *Session) Events() <-chan string { return s.events }

// Done closes once the run reached its terminal state.
func (s *Session) Done() <-chan struct{} { return s.done }

// Emit pushes one progress line without ever blocking; under pressure the
// event is dropped.
func (s *Session) Emit(msg string) {
	select {
	case s.events <- msg:
	default:
	}
}

// Artifact reports the artifact this run produced, if any.
func (s *Session) Artifact() (models.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.artifact, s.hasArtifact
}

func (s *Session) setArtifact(a models.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = a
	s.hasArtifact = true
}

// Manager starts runs in their own goroutines and retains session handles
// by run ID. Runs cannot be cancelled once started; they proceed to
// natural or budget-exhausted termination.
type Manager struct {
	agent             *agent.Agent
	registry          registry.Registry
	defaultMaxResults int
	logger            *log.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(ag *agent.Agent, reg registry.Registry, defaultMaxResults int) *Manager {
	if defaultMaxResults <= 0 {
		defaultMaxResults = 3
	}
	return &Manager{
		agent:             ag,
		registry:          reg,
		defaultMaxResults: defaultMaxResults,
		logger:            log.New(log.Writer(), "[SESSION] ", log.LstdFlags),
		sessions:          make(map[string]*Session),
	}
}

// Start launches one research run and returns its session immediately.
func (m *Manager) Start(task string, maxResults int) *Session {
	if maxResults <= 0 {
		maxResults = m.defaultMaxResults
	}
	s := &Session{
		id:     uuid.NewString(),
		task:   task,
		events: make(chan string, eventBuffer),
		done:   make(chan struct{}),
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	go func() {
		// The stream always closes, whatever ended the run.
		defer func() {
			close(s.events)
			close(s.done)
		}()
		// The artifact is recorded before the terminal event goes out, so a
		// subscriber reacting to "Report ready" can already fetch it.
		m.agent.Run(context.Background(), task, maxResults, s.Emit, func(a models.Artifact) {
			s.setArtifact(a)
			if err := m.registry.Record(context.Background(), s.id, a); err != nil {
				m.logger.Printf("recording artifact for run %s failed: %v", s.id, err)
			}
		})
	}()
	return s
}

// Get returns the session for a run ID.
func (m *Manager) Get(runID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[runID]
	return s, ok
}
