package redis_registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/scourbot/scour/internal/artifact/registry"
	"github.com/scourbot/scour/models"
)

// Registry shares artifact references across processes through Redis.
type Registry struct {
	client *redis.Client
}

func NewRegistry(addr, password string, db int) registry.Registry {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Registry{client: rdb}
}

func runKey(runID string) string     { return fmt.Sprintf("artifact:run:%s", runID) }
func idKey(artifactID string) string { return fmt.Sprintf("artifact:id:%s", artifactID) }
func latestKey() string              { return "artifact:latest" }

func (r *Registry) Record(ctx context.Context, runID string, a models.Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, runKey(runID), data, 0).Err(); err != nil {
		return err
	}
	if err := r.client.Set(ctx, idKey(a.ID), data, 0).Err(); err != nil {
		return err
	}
	return r.client.Set(ctx, latestKey(), data, 0).Err()
}

func (r *Registry) ByRun(ctx context.Context, runID string) (models.Artifact, bool, error) {
	return r.get(ctx, runKey(runID))
}

func (r *Registry) ByID(ctx context.Context, artifactID string) (models.Artifact, bool, error) {
	return r.get(ctx, idKey(artifactID))
}

func (r *Registry) Latest(ctx context.Context) (models.Artifact, bool, error) {
	return r.get(ctx, latestKey())
}

func (r *Registry) get(ctx context.Context, key string) (models.Artifact, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return models.Artifact{}, false, nil
	}
	if err != nil {
		return models.Artifact{}, false, err
	}
	var a models.Artifact
	if err := json.Unmarshal([]byte(val), &a); err != nil {
		return models.Artifact{}, false, err
	}
	return a, true, nil
}
