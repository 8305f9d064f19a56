// Package artifact tracks produced report artifacts: one entry per run
// plus a process-wide "most recent" pointer for default downloads.
package artifact

import (
	"fmt"

	"github.com/scourbot/scour/config"
	"github.com/scourbot/scour/internal/artifact/inmemory"
	redis_registry "github.com/scourbot/scour/internal/artifact/redis"
	"github.com/scourbot/scour/internal/artifact/registry"
)

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

// NewRegistry creates an artifact registry backed by the configured store.
func NewRegistry(storeType StoreType, redisCfg config.RedisConfig) (registry.Registry, error) {
	switch storeType {
	case "", InMemoryStore:
		return inmemory.NewRegistry(), nil
	case RedisStore:
		return redis_registry.NewRegistry(
			fmt.Sprintf("%s:%s", redisCfg.Host, redisCfg.Port),
			redisCfg.Password,
			redisCfg.DB,
		), nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
