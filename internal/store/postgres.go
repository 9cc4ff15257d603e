package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobboard-engine/internal/domain"
)

type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, now: time.Now}, nil
}

func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Migrate creates the schema. Statements are idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range []string{`
CREATE TABLE IF NOT EXISTS jobs (
  id UUID PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  requirements JSONB NOT NULL DEFAULT '[]',
  salary TEXT NOT NULL,
  location TEXT NOT NULL,
  job_type TEXT NOT NULL,
  experience_level INT NOT NULL DEFAULT 1,
  position INT NOT NULL DEFAULT 1,
  company_id UUID NOT NULL,
  company_name TEXT NOT NULL DEFAULT '',
  created_by UUID NOT NULL,
  applications JSONB NOT NULL DEFAULT '[]',
  application_link TEXT,
  company_logo TEXT,
  source TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_natural_key ON jobs (title, location, company_id);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at DESC);`,
	} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const pgColumns = `id, title, description, requirements, salary, location, job_type,
  experience_level, position, company_id, company_name, created_by, applications,
  application_link, company_logo, source, created_at`

func (s *PostgresStore) FindOne(ctx context.Context, key domain.NaturalKey) (domain.Job, error) {
	const q = `
SELECT ` + pgColumns + `
FROM jobs
WHERE title = $1 AND location = $2 AND company_id = $3
LIMIT 1;`
	return scanPostgres(s.pool.QueryRow(ctx, q, key.Title, key.Location, key.CompanyID))
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (domain.Job, error) {
	const q = `SELECT ` + pgColumns + ` FROM jobs WHERE id = $1;`
	return scanPostgres(s.pool.QueryRow(ctx, q, id))
}

func (s *PostgresStore) Create(ctx context.Context, job domain.Job) (domain.Job, error) {
	job = prepareCreate(job, s.now())

	reqs, err := json.Marshal(job.Requirements)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode requirements: %w", err)
	}
	apps, err := json.Marshal(job.Applications)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode applications: %w", err)
	}

	const q = `
INSERT INTO jobs (` + pgColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
ON CONFLICT (title, location, company_id) DO NOTHING
RETURNING id;`

	var id uuid.UUID
	err = s.pool.QueryRow(ctx, q,
		job.ID, job.Title, job.Description, reqs, job.Salary, job.Location, job.JobType,
		job.ExperienceLevel, job.Position, job.CompanyID, job.CompanyName, job.CreatedBy, apps,
		job.ApplicationLink, job.CompanyLogo, job.Source, job.CreatedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, ErrDuplicate
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) List(ctx context.Context, opts ListJobsOpts) ([]domain.Job, error) {
	var (
		where string
		args  []any
	)
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		where = `WHERE title ILIKE $1 OR description ILIKE $1`
		args = append(args, likePattern(kw))
	}
	args = append(args, opts.limit())

	q := fmt.Sprintf(`
SELECT %s
FROM jobs
%s
ORDER BY created_at DESC, id DESC
LIMIT $%d;`, pgColumns, where, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := []domain.Job{}
	for rows.Next() {
		j, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanPostgres(r pgx.Row) (domain.Job, error) {
	var (
		j          domain.Job
		reqs, apps []byte
	)
	err := r.Scan(&j.ID, &j.Title, &j.Description, &reqs, &j.Salary, &j.Location, &j.JobType,
		&j.ExperienceLevel, &j.Position, &j.CompanyID, &j.CompanyName, &j.CreatedBy, &apps,
		&j.ApplicationLink, &j.CompanyLogo, &j.Source, &j.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("scan job: %w", err)
	}
	if err := json.Unmarshal(reqs, &j.Requirements); err != nil {
		return domain.Job{}, fmt.Errorf("scan requirements: %w", err)
	}
	if err := json.Unmarshal(apps, &j.Applications); err != nil {
		return domain.Job{}, fmt.Errorf("scan applications: %w", err)
	}
	j.CreatedAt = j.CreatedAt.UTC()
	return j, nil
}
