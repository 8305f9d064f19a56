package registry

import (
	"context"

	"github.com/scourbot/scour/models"
)

// Registry records which artifact each run produced and keeps the most
// recent one for default downloads. Lookups by run ID need no locking in
// implementations beyond their own; the latest pointer is the only shared
// mutable state.
type Registry interface {
	Record(ctx context.Context, runID string, a models.Artifact) error
	ByRun(ctx context.Context, runID string) (models.Artifact, bool, error)
	ByID(ctx context.Context, artifactID string) (models.Artifact, bool, error)
	Latest(ctx context.Context) (models.Artifact, bool, error)
}
