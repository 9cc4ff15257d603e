package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jobboard-engine/internal/domain"
)

// Fixed width so TEXT ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// one writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate brings the schema to the current PRAGMA user_version.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if v >= 1 {
		return tx.Commit()
	}

	for _, stmt := range []string{`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  requirements TEXT NOT NULL DEFAULT '[]',
  salary TEXT NOT NULL,
  location TEXT NOT NULL,
  job_type TEXT NOT NULL,
  experience_level INTEGER NOT NULL DEFAULT 1,
  position INTEGER NOT NULL DEFAULT 1,
  company_id TEXT NOT NULL,
  company_name TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL,
  applications TEXT NOT NULL DEFAULT '[]',
  application_link TEXT,
  company_logo TEXT,
  source TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_natural_key
ON jobs(title, location, company_id);`, `
CREATE INDEX IF NOT EXISTS idx_jobs_created_at
ON jobs(created_at);`, `
PRAGMA user_version = 1;`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit()
}

const sqliteColumns = `id, title, description, requirements, salary, location, job_type,
  experience_level, position, company_id, company_name, created_by, applications,
  application_link, company_logo, source, created_at`

func (s *SQLiteStore) FindOne(ctx context.Context, key domain.NaturalKey) (domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+sqliteColumns+`
FROM jobs
WHERE title = ? AND location = ? AND company_id = ?
LIMIT 1;`, key.Title, key.Location, key.CompanyID.String())
	return scanSQLite(row)
}

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM jobs WHERE id = ?;`, id.String())
	return scanSQLite(row)
}

func (s *SQLiteStore) Create(ctx context.Context, job domain.Job) (domain.Job, error) {
	job = prepareCreate(job, s.now())

	reqs, err := json.Marshal(job.Requirements)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode requirements: %w", err)
	}
	apps, err := json.Marshal(job.Applications)
	if err != nil {
		return domain.Job{}, fmt.Errorf("encode applications: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (`+sqliteColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(title, location, company_id) DO NOTHING;`,
		job.ID.String(), job.Title, job.Description, string(reqs), job.Salary, job.Location,
		job.JobType, job.ExperienceLevel, job.Position, job.CompanyID.String(), job.CompanyName,
		job.CreatedBy.String(), string(apps), nullString(job.ApplicationLink),
		nullString(job.CompanyLogo), job.Source, job.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Job{}, fmt.Errorf("insert job: %w", err)
	}
	if n == 0 {
		return domain.Job{}, ErrDuplicate
	}
	return job, nil
}

// List orders newest first. LIKE is case-insensitive for ASCII only in SQLite.
func (s *SQLiteStore) List(ctx context.Context, opts ListJobsOpts) ([]domain.Job, error) {
	var (
		where string
		args  []any
	)
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		where = `WHERE title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\'`
		p := likePattern(kw)
		args = append(args, p, p)
	}
	args = append(args, opts.limit())

	rows, err := s.db.QueryContext(ctx, `
SELECT `+sqliteColumns+`
FROM jobs
`+where+`
ORDER BY created_at DESC, rowid DESC
LIMIT ?;`, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := []domain.Job{}
	for rows.Next() {
		j, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(r rowScanner) (domain.Job, error) {
	var (
		j                        domain.Job
		id, companyID, createdBy string
		reqs, apps, createdAt    string
		applicationLink, logo    sql.NullString
	)
	err := r.Scan(&id, &j.Title, &j.Description, &reqs, &j.Salary, &j.Location, &j.JobType,
		&j.ExperienceLevel, &j.Position, &companyID, &j.CompanyName, &createdBy, &apps,
		&applicationLink, &logo, &j.Source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, ErrNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("scan job: %w", err)
	}

	if j.ID, err = uuid.Parse(id); err != nil {
		return domain.Job{}, fmt.Errorf("scan job id: %w", err)
	}
	if j.CompanyID, err = uuid.Parse(companyID); err != nil {
		return domain.Job{}, fmt.Errorf("scan company id: %w", err)
	}
	if j.CreatedBy, err = uuid.Parse(createdBy); err != nil {
		return domain.Job{}, fmt.Errorf("scan created_by: %w", err)
	}
	if err := json.Unmarshal([]byte(reqs), &j.Requirements); err != nil {
		return domain.Job{}, fmt.Errorf("scan requirements: %w", err)
	}
	if err := json.Unmarshal([]byte(apps), &j.Applications); err != nil {
		return domain.Job{}, fmt.Errorf("scan applications: %w", err)
	}
	if j.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return domain.Job{}, fmt.Errorf("scan created_at: %w", err)
	}
	j.ApplicationLink = stringPtr(applicationLink)
	j.CompanyLogo = stringPtr(logo)
	return j, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
