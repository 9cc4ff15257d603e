// Package store persists canonical job records. Two backends implement the
// same JobStore contract: SQLite (default, single file in the data dir) and
// PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard-engine/internal/domain"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrDuplicate = errors.New("job already exists")
)

// JobStore is the persistence gateway used by the ingestion pipeline and
// the read API.
type JobStore interface {
	// FindOne matches the natural key exactly (case-sensitive).
	FindOne(ctx context.Context, key domain.NaturalKey) (domain.Job, error)
	// Create inserts job and returns it with ID and CreatedAt filled in.
	// It returns ErrDuplicate when the natural key is already taken.
	Create(ctx context.Context, job domain.Job) (domain.Job, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Job, error)
	List(ctx context.Context, opts ListJobsOpts) ([]domain.Job, error)
	Migrate(ctx context.Context) error
	Close() error
}

type ListJobsOpts struct {
	Keyword string // matched case-insensitively against title and description
	Limit   int    // <= 0 means DefaultListLimit
}

const (
	DefaultListLimit = 500
	MaxListLimit     = 2000
)

func (o ListJobsOpts) limit() int {
	switch {
	case o.Limit <= 0:
		return DefaultListLimit
	case o.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return o.Limit
	}
}

type Options struct {
	Driver string // sqlite | postgres
	Path   string // sqlite file
	DSN    string // postgres connection string
}

// Open connects to the configured backend. Callers run Migrate before use.
func Open(ctx context.Context, opts Options) (JobStore, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "sqlite":
		return OpenSQLite(ctx, opts.Path)
	case "postgres", "postgresql", "pgx":
		return OpenPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// prepareCreate fills the fields the store owns.
func prepareCreate(job domain.Job, now time.Time) domain.Job {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	// microseconds: the precision both backends keep
	job.CreatedAt = job.CreatedAt.UTC().Truncate(time.Microsecond)
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	if job.Applications == nil {
		job.Applications = []uuid.UUID{}
	}
	return job
}

// likePattern escapes LIKE metacharacters; queries use ESCAPE '\'.
func likePattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}
