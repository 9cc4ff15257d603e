// Package greenhouse reads public Greenhouse job boards through the boards
// API. Like lever it needs no credentials; an empty company list disables it.
package greenhouse

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/util"
)

const DefaultBaseURL = "https://boards-api.greenhouse.io"

type Config struct {
	Companies []Company
	BaseURL   string
	Timeout   time.Duration
}

type Company struct {
	Slug string // boards.greenhouse.io/<slug>
	Name string // display name; falls back to the board's company_name
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Scraper{
		cfg:     cfg,
		hc:      util.NewClient(cfg.Timeout),
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "greenhouse" }

type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

type boardJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	UpdatedAt   string `json:"updated_at"`
	AbsoluteURL string `json:"absolute_url"`
	Content     string `json:"content"` // entity-escaped HTML
	CompanyName string `json:"company_name"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

// Fetch reads every board in order. One board being down does not fail the
// others.
func (s *Scraper) Fetch(ctx context.Context) []domain.RawListing {
	if len(s.cfg.Companies) == 0 {
		log.Printf("[greenhouse] level=warn msg=%q", "no companies configured; skipping")
		return nil
	}

	var out []domain.RawListing
	for _, co := range s.cfg.Companies {
		if ctx.Err() != nil {
			break
		}
		jobs, err := s.fetchCompany(ctx, co)
		if err != nil {
			log.Printf("[greenhouse] level=error company=%q slug=%q err=%v", co.Name, co.Slug, err)
			continue
		}
		out = append(out, jobs...)
	}
	log.Printf("[greenhouse] companies=%d fetched=%d", len(s.cfg.Companies), len(out))
	return out
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.RawListing, error) {
	apiURL := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(co.Slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse request: %w", err)
	}

	var body boardResponse
	if err := util.DoJSON(ctx, s.hc, s.limiter, req, &body); err != nil {
		return nil, fmt.Errorf("greenhouse get board: %w", err)
	}

	out := make([]domain.RawListing, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		title := util.CleanText(j.Title)
		if j.ID == 0 || title == "" {
			continue
		}
		raw := domain.RawListing{
			Source:      "greenhouse",
			ExternalID:  fmt.Sprintf("greenhouse:%s:%d", co.Slug, j.ID),
			CompanyName: companyName(co, j),
			Title:       title,
			Description: html.UnescapeString(j.Content),
			Location:    util.NormalizeLocation(j.Location.Name),
			RedirectURL: util.CanonicalizeURL(j.AbsoluteURL),
		}
		for _, d := range j.Departments {
			if name := strings.TrimSpace(d.Name); name != "" {
				raw.Categories = append(raw.Categories, name)
			}
		}
		if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil {
			t = t.UTC()
			raw.PostedAt = &t
		}
		out = append(out, raw)
	}
	return out, nil
}

func companyName(co Company, j boardJob) string {
	if n := strings.TrimSpace(co.Name); n != "" {
		return n
	}
	if n := strings.TrimSpace(j.CompanyName); n != "" {
		return n
	}
	return co.Slug
}
