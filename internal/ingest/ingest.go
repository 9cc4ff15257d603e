// Package ingest applies normalize, validate and check-then-insert to the
// listings a connector returned.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/normalize"
	"jobboard-engine/internal/store"
)

// Gateway is the part of the store the pipeline writes through.
type Gateway interface {
	FindOne(ctx context.Context, key domain.NaturalKey) (domain.Job, error)
	Create(ctx context.Context, job domain.Job) (domain.Job, error)
}

type Outcome int

const (
	Inserted Outcome = iota + 1
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Upsert inserts job unless a record with the same natural key exists.
// Existing records are never modified. A unique-constraint conflict from a
// concurrent insert is reported as Skipped.
func Upsert(ctx context.Context, gw Gateway, job domain.Job) (Outcome, domain.Job, error) {
	existing, err := gw.FindOne(ctx, job.Key())
	switch {
	case err == nil:
		return Skipped, existing, nil
	case !errors.Is(err, store.ErrNotFound):
		return 0, domain.Job{}, fmt.Errorf("find job: %w", err)
	}

	created, err := gw.Create(ctx, job)
	if errors.Is(err, store.ErrDuplicate) {
		return Skipped, job, nil
	}
	if err != nil {
		return 0, domain.Job{}, fmt.Errorf("create job: %w", err)
	}
	return Inserted, created, nil
}

// Counts summarizes one connector's batch.
type Counts struct {
	Fetched    int `json:"fetched"`
	Normalized int `json:"normalized"`
	Persisted  int `json:"persisted"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func (c *Counts) Add(o Counts) {
	c.Fetched += o.Fetched
	c.Normalized += o.Normalized
	c.Persisted += o.Persisted
	c.Skipped += o.Skipped
	c.Failed += o.Failed
}

type Processor struct {
	Gateway      Gateway
	Placeholders domain.Placeholders
	// OnInserted runs after each successful insert.
	OnInserted func(domain.Job)
}

// Process handles each listing independently; a failure is logged, counted
// and the batch moves on.
func (p *Processor) Process(ctx context.Context, source string, listings []domain.RawListing) Counts {
	c := Counts{Fetched: len(listings)}

	for i, raw := range listings {
		if err := ctx.Err(); err != nil {
			c.Failed += len(listings) - i
			log.Printf("[ingest:%s] stopped: %v", source, err)
			break
		}

		if raw.Source == "" {
			raw.Source = source
		}
		job := normalize.Normalize(raw, p.Placeholders)
		if err := normalize.Validate(job); err != nil {
			c.Failed++
			log.Printf("[ingest:%s] rejected external_id=%q err=%v", source, raw.ExternalID, err)
			continue
		}
		c.Normalized++

		outcome, saved, err := Upsert(ctx, p.Gateway, job)
		if err != nil {
			c.Failed++
			log.Printf("[ingest:%s] persist error title=%q location=%q err=%v", source, job.Title, job.Location, err)
			continue
		}

		switch outcome {
		case Inserted:
			c.Persisted++
			if p.OnInserted != nil {
				p.OnInserted(saved)
			}
		case Skipped:
			c.Skipped++
		}
	}
	return c
}
