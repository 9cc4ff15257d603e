package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/store"
)

// fakeGateway is an in-memory store keyed by the natural key.
type fakeGateway struct {
	mu      sync.Mutex
	jobs    map[domain.NaturalKey]domain.Job
	findErr error
	// failTitle makes Create fail for one title.
	failTitle string
	// raceTitle simulates another writer winning between FindOne and Create.
	raceTitle string
	creates   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{jobs: map[domain.NaturalKey]domain.Job{}}
}

func (f *fakeGateway) FindOne(_ context.Context, key domain.NaturalKey) (domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.Job{}, f.findErr
	}
	j, ok := f.jobs[key]
	if !ok {
		return domain.Job{}, store.ErrNotFound
	}
	return j, nil
}

func (f *fakeGateway) Create(_ context.Context, job domain.Job) (domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if job.Title == f.failTitle {
		return domain.Job{}, errors.New("disk full")
	}
	if job.Title == f.raceTitle {
		return domain.Job{}, store.ErrDuplicate
	}
	if _, ok := f.jobs[job.Key()]; ok {
		return domain.Job{}, store.ErrDuplicate
	}
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	f.jobs[job.Key()] = job
	return job, nil
}

func placeholders() domain.Placeholders {
	return domain.Placeholders{CompanyID: uuid.New(), CreatedBy: uuid.New()}
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	job := domain.Job{Title: "Backend Engineer", Location: "Bangalore", CompanyID: uuid.New()}

	outcome, created, err := Upsert(ctx, gw, job)
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)
	assert.NotEqual(t, uuid.Nil, created.ID)

	changed := job
	changed.Description = "different body"
	outcome, existing, err := Upsert(ctx, gw, changed)
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
	assert.Equal(t, created.ID, existing.ID)
	assert.Empty(t, gw.jobs[job.Key()].Description, "existing record must not be modified")
	assert.Equal(t, 1, gw.creates)
}

func TestUpsert_RaceIsSkipped(t *testing.T) {
	gw := newFakeGateway()
	gw.raceTitle = "SRE"

	outcome, _, err := Upsert(context.Background(), gw, domain.Job{Title: "SRE", Location: "Remote"})
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
}

func TestUpsert_Errors(t *testing.T) {
	gw := newFakeGateway()
	gw.findErr = errors.New("connection reset")
	_, _, err := Upsert(context.Background(), gw, domain.Job{Title: "x"})
	assert.ErrorContains(t, err, "find job")

	gw = newFakeGateway()
	gw.failTitle = "x"
	_, _, err = Upsert(context.Background(), gw, domain.Job{Title: "x"})
	assert.ErrorContains(t, err, "create job")
}

func TestProcess_CountsAndIsolation(t *testing.T) {
	gw := newFakeGateway()
	gw.failTitle = "Broken Persist"

	var inserted []domain.Job
	p := &Processor{
		Gateway:      gw,
		Placeholders: placeholders(),
		OnInserted:   func(j domain.Job) { inserted = append(inserted, j) },
	}

	listings := []domain.RawListing{
		{Title: "Backend Engineer", Location: "Bangalore", CompanyName: "Foo Corp"},
		{Title: "Backend Engineer", Location: "Bangalore", CompanyName: "Other Corp"}, // same key under placeholder company
		{Title: "   ", CompanyName: "No Title"},
		{Title: "Broken Persist"},
		{Title: "Frontend Developer", Location: "Pune"},
	}

	c := p.Process(context.Background(), "adzuna", listings)
	assert.Equal(t, Counts{Fetched: 5, Normalized: 4, Persisted: 2, Skipped: 1, Failed: 2}, c)

	require.Len(t, inserted, 2)
	assert.Equal(t, "adzuna", inserted[0].Source)
	assert.Equal(t, "Foo Corp", inserted[0].CompanyName)
	assert.Equal(t, "Frontend Developer", inserted[1].Title)
}

func TestProcess_SecondRunAddsNothing(t *testing.T) {
	gw := newFakeGateway()
	p := &Processor{Gateway: gw, Placeholders: placeholders()}
	listings := []domain.RawListing{
		{Title: "Backend Engineer", Location: "Bangalore", CompanyName: "Foo Corp"},
		{Title: "Go Developer"},
	}

	first := p.Process(context.Background(), "jooble", listings)
	second := p.Process(context.Background(), "jooble", listings)

	assert.Equal(t, 2, first.Persisted)
	assert.Equal(t, 0, second.Persisted)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, gw.jobs, 2)
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := newFakeGateway()
	p := &Processor{Gateway: gw, Placeholders: placeholders()}
	c := p.Process(ctx, "lever", []domain.RawListing{{Title: "a"}, {Title: "b"}})

	assert.Equal(t, Counts{Fetched: 2, Failed: 2}, c)
	assert.Zero(t, gw.creates)
}

func TestCountsAdd(t *testing.T) {
	c := Counts{Fetched: 1, Persisted: 1}
	c.Add(Counts{Fetched: 2, Skipped: 2, Failed: 1, Normalized: 2})
	assert.Equal(t, Counts{Fetched: 3, Normalized: 2, Persisted: 1, Skipped: 2, Failed: 1}, c)
}
