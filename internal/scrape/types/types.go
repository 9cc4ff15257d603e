package types

import (
	"context"

	"jobboard-engine/internal/domain"
)

// Fetcher is implemented by every job source. Fetch never returns an error:
// missing credentials and upstream failures are logged by the connector and
// surface as an empty result.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) []domain.RawListing
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc struct {
	SourceName string
	Fn         func(ctx context.Context) []domain.RawListing
}

func (f FetcherFunc) Name() string { return f.SourceName }

func (f FetcherFunc) Fetch(ctx context.Context) []domain.RawListing { return f.Fn(ctx) }
