package httpapi

import (
	"context"

	"github.com/google/uuid"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/poll"
	"jobboard-engine/internal/store"
)

// JobReader is the read side of the job store.
type JobReader interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Job, error)
	List(ctx context.Context, opts store.ListJobsOpts) ([]domain.Job, error)
}

// RunController starts ingestion runs and reports on them.
type RunController interface {
	TriggerAsync(ctx context.Context) error
	Status() poll.Status
}

type Deps struct {
	Jobs   JobReader
	Runs   RunController
	Hub    *events.Hub
	Config config.Config
	// ConfigPath is the config.yml the server was started with.
	ConfigPath string
	// RunContext bounds manually triggered runs; it should end on shutdown.
	RunContext context.Context
	// AllowSecretWrites enables PUT/DELETE /secrets/{account}.
	AllowSecretWrites bool
}
