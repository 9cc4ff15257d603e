package poll

import (
	"fmt"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/scrape/adzuna"
	"jobboard-engine/internal/scrape/alerts"
	"jobboard-engine/internal/scrape/greenhouse"
	"jobboard-engine/internal/scrape/jooble"
	"jobboard-engine/internal/scrape/lever"
	"jobboard-engine/internal/scrape/types"
	"jobboard-engine/internal/scrape/util"
	"jobboard-engine/internal/secrets"
)

// BuildFetchers returns the enabled connectors in registration order.
// A connector without credentials is still registered; it logs a warning
// and returns nothing on each run.
func BuildFetchers(cfg config.Config, creds secrets.Credentials, limiter *util.HostLimiter) []types.Fetcher {
	timeout := cfg.FetchTimeout()
	src := cfg.Sources

	var fetchers []types.Fetcher
	if src.Adzuna.Enabled {
		fetchers = append(fetchers, adzuna.New(adzuna.Config{
			AppID:          creds.AdzunaAppID,
			AppKey:         creds.AdzunaAppKey,
			BaseURL:        src.Adzuna.BaseURL,
			Country:        src.Adzuna.Country,
			What:           src.Adzuna.What,
			SortBy:         src.Adzuna.SortBy,
			MaxDaysOld:     src.Adzuna.MaxDaysOld,
			ResultsPerPage: src.Adzuna.ResultsPerPage,
			Page:           src.Adzuna.Page,
			Timeout:        timeout,
		}, limiter))
	}
	if src.Jooble.Enabled {
		fetchers = append(fetchers, jooble.New(jooble.Config{
			APIKey:   creds.JoobleKey,
			BaseURL:  src.Jooble.BaseURL,
			Keywords: src.Jooble.Keywords,
			Location: src.Jooble.Location,
			Page:     src.Jooble.Page,
			Timeout:  timeout,
		}, limiter))
	}
	if src.Lever.Enabled {
		companies := make([]lever.Company, 0, len(src.Lever.Companies))
		for _, c := range src.Lever.Companies {
			companies = append(companies, lever.Company{Slug: c.Slug, Name: c.Name})
		}
		fetchers = append(fetchers, lever.New(lever.Config{
			Companies: companies,
			BaseURL:   src.Lever.BaseURL,
			Timeout:   timeout,
		}, limiter))
	}
	if src.Greenhouse.Enabled {
		companies := make([]greenhouse.Company, 0, len(src.Greenhouse.Companies))
		for _, c := range src.Greenhouse.Companies {
			companies = append(companies, greenhouse.Company{Slug: c.Slug, Name: c.Name})
		}
		fetchers = append(fetchers, greenhouse.New(greenhouse.Config{
			Companies: companies,
			BaseURL:   src.Greenhouse.BaseURL,
			Timeout:   timeout,
		}, limiter))
	}
	if src.Alerts.Enabled {
		fetchers = append(fetchers, alerts.New(alerts.Config{
			Addr:        cfg.IMAPAddr(),
			Username:    src.Alerts.Username,
			Password:    creds.IMAPPassword,
			Folder:      src.Alerts.Folder,
			SinceDays:   src.Alerts.SinceDays,
			MaxMessages: src.Alerts.MaxMessages,
		}))
	}
	return fetchers
}

// BuildRunner wires connectors, normalizer and store for cfg. New jobs are
// announced on hub when it is non-nil.
func BuildRunner(cfg config.Config, creds secrets.Credentials, gw ingest.Gateway, hub *events.Hub) (*Runner, error) {
	ph, err := cfg.PlaceholderIDs()
	if err != nil {
		return nil, fmt.Errorf("placeholders: %w", err)
	}
	limiter := util.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	proc := &ingest.Processor{Gateway: gw, Placeholders: ph}
	if hub != nil {
		proc.OnInserted = func(j domain.Job) {
			hub.Emit(events.TypeJobCreated, map[string]any{
				"id":      j.ID,
				"title":   j.Title,
				"company": j.CompanyName,
				"source":  j.Source,
			})
		}
	}

	return &Runner{
		Fetchers:       BuildFetchers(cfg, creds, limiter),
		Processor:      proc,
		FetchTimeout:   cfg.FetchTimeout(),
		ProcessTimeout: cfg.ProcessTimeout(),
		Concurrent:     cfg.Polling.Concurrent,
	}, nil
}
