package inmemory

import (
	"context"
	"sync"

	"github.com/scourbot/scour/internal/artifact/registry"
	"github.com/scourbot/scour/models"
)

type Registry struct {
	mu     sync.RWMutex
	byRun  map[string]models.Artifact
	byID   map[string]models.Artifact
	latest *models.Artifact
}

func NewRegistry() registry.Registry {
	return &Registry{
		byRun: make(map[string]models.Artifact),
		byID:  make(map[string]models.Artifact),
	}
}

func (r *Registry) Record(ctx context.Context, runID string, a models.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRun[runID] = a
	r.byID[a.ID] = a
	r.latest = &a
	return nil
}

func (r *Registry) ByRun(ctx context.Context, runID string) (models.Artifact, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byRun[runID]
	return a, ok, nil
}

func (r *Registry) ByID(ctx context.Context, artifactID string) (models.Artifact, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[artifactID]
	return a, ok, nil
}

func (r *Registry) Latest(ctx context.Context) (models.Artifact, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return models.Artifact{}, false, nil
	}
	return *r.latest, true, nil
}
