package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-engine/internal/domain"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleJob(title, location string, company uuid.UUID) domain.Job {
	link := "https://example.com/apply/" + title
	logo := "https://ui-avatars.com/api/?name=FC&background=random&color=fff&size=128"
	return domain.Job{
		Title:           title,
		Description:     "<p><strong>Company:</strong> Foo Corp</p>Build things.",
		Requirements:    []string{"IT Jobs"},
		Salary:          "Not disclosed",
		Location:        location,
		JobType:         "Full-time",
		ExperienceLevel: 1,
		Position:        1,
		CompanyID:       company,
		CompanyName:     "Foo Corp",
		CreatedBy:       uuid.New(),
		Applications:    []uuid.UUID{},
		ApplicationLink: &link,
		CompanyLogo:     &logo,
		Source:          "adzuna",
	}
}

func TestSQLite_CreateFindGet(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	company := uuid.New()

	in := sampleJob("Backend Engineer", "Bangalore", company)
	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := s.FindOne(ctx, in.Key())
	require.NoError(t, err)
	assert.Equal(t, created, found)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	require.NotNil(t, got.ApplicationLink)
	assert.Equal(t, *in.ApplicationLink, *got.ApplicationLink)
	assert.Equal(t, []uuid.UUID{}, got.Applications)
}

func TestSQLite_NilOptionalFields(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	in := sampleJob("Intern", "Remote", uuid.New())
	in.ApplicationLink = nil
	in.CompanyLogo = nil
	in.Requirements = nil

	created, err := s.Create(ctx, in)
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ApplicationLink)
	assert.Nil(t, got.CompanyLogo)
	assert.Equal(t, []string{}, got.Requirements)
	assert.False(t, got.IsExternal())
}

func TestSQLite_FindOneIsExact(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	company := uuid.New()

	_, err := s.Create(ctx, sampleJob("Backend Engineer", "Bangalore", company))
	require.NoError(t, err)

	for _, key := range []domain.NaturalKey{
		{Title: "backend engineer", Location: "Bangalore", CompanyID: company},
		{Title: "Backend Engineer", Location: "Bangalore ", CompanyID: company},
		{Title: "Backend Engineer", Location: "Bangalore", CompanyID: uuid.New()},
	} {
		_, err := s.FindOne(ctx, key)
		assert.ErrorIs(t, err, ErrNotFound, "%+v", key)
	}
}

func TestSQLite_DuplicateKey(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	company := uuid.New()

	_, err := s.Create(ctx, sampleJob("Backend Engineer", "Bangalore", company))
	require.NoError(t, err)

	_, err = s.Create(ctx, sampleJob("Backend Engineer", "Bangalore", company))
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.Create(ctx, sampleJob("Backend Engineer", "Pune", company))
	assert.NoError(t, err)
}

func TestSQLite_ConcurrentCreateSameKey(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	company := uuid.New()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(ctx, sampleJob("SRE", "Remote", company)); err == nil {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, inserted)
}

func TestSQLite_ListKeywordAndOrder(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	company := uuid.New()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"Go Developer", "Data Analyst", "Senior GO engineer", "100% remote_ops"} {
		j := sampleJob(title, "Remote", company)
		j.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if title == "Data Analyst" {
			j.Description = "SQL and a little go tooling"
		}
		_, err := s.Create(ctx, j)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "100% remote_ops", all[0].Title)
	assert.Equal(t, "Go Developer", all[3].Title)

	got, err := s.List(ctx, ListJobsOpts{Keyword: "go"})
	require.NoError(t, err)
	var titles []string
	for _, j := range got {
		titles = append(titles, j.Title)
	}
	assert.Equal(t, []string{"Senior GO engineer", "Data Analyst", "Go Developer"}, titles)

	got, err = s.List(ctx, ListJobsOpts{Keyword: "0%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% remote_ops", got[0].Title)

	got, err = s.List(ctx, ListJobsOpts{Keyword: "nothing-matches"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.List(ctx, ListJobsOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLite_MigrateIsIdempotent(t *testing.T) {
	s := newSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Options{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.Close())

	_, err = Open(ctx, Options{Driver: "mongo"})
	assert.ErrorContains(t, err, "unknown store driver")

	_, err = Open(ctx, Options{Driver: "postgres"})
	assert.ErrorContains(t, err, "dsn is required")
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\% off\_now%`, likePattern("50% off_now"))
}
