// Package jooble fetches postings from the Jooble REST API. The API key is
// part of the request path, so every error leaving this package is redacted.
package jooble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/util"
)

const DefaultBaseURL = "https://jooble.org"

type Config struct {
	APIKey   string
	BaseURL  string
	Keywords string // "developer"
	Location string // "India"
	Page     int    // 1
	Timeout  time.Duration
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
	if cfg.Keywords == "" {
		cfg.Keywords = "developer"
	}
	if cfg.Location == "" {
		cfg.Location = "India"
	}
	if cfg.Page <= 0 {
		cfg.Page = 1
	}
	return &Scraper{
		cfg:     cfg,
		hc:      util.NewClient(cfg.Timeout),
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "jooble" }

type searchRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
	Page     int    `json:"page"`
}

type searchResponse struct {
	TotalCount int   `json:"totalCount"`
	Jobs       []job `json:"jobs"`
}

type job struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Location string      `json:"location"`
	Type     string      `json:"type"`
	Link     string      `json:"link"`
	Company  string      `json:"company"`
	Source   string      `json:"source"`
	Updated  string      `json:"updated"`
}

// Fetch posts the configured query. A missing key or any upstream failure
// is logged and yields no listings.
func (s *Scraper) Fetch(ctx context.Context) []domain.RawListing {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		log.Printf("[jooble] level=warn msg=%q", "api key not configured; skipping")
		return nil
	}

	resp, err := s.search(ctx)
	if err != nil {
		log.Printf("[jooble] level=error keywords=%q location=%q err=%v", s.cfg.Keywords, s.cfg.Location, err)
		return nil
	}

	out := make([]domain.RawListing, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		out = append(out, toRaw(j))
	}
	log.Printf("[jooble] fetched=%d total=%d", len(out), resp.TotalCount)
	return out
}

func (s *Scraper) search(ctx context.Context) (*searchResponse, error) {
	body, err := json.Marshal(searchRequest{
		Keywords: s.cfg.Keywords,
		Location: s.cfg.Location,
		Page:     s.cfg.Page,
	})
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/api/" + url.PathEscape(s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %s", s.redact(err.Error()))
	}
	req.Header.Set("Content-Type", "application/json")

	var resp searchResponse
	if err := util.DoJSON(ctx, s.hc, s.limiter, req, &resp); err != nil {
		return nil, fmt.Errorf("search: %s", s.redact(err.Error()))
	}
	return &resp, nil
}

func (s *Scraper) redact(msg string) string {
	msg = util.Redact(msg, url.PathEscape(s.cfg.APIKey))
	return util.Redact(msg, s.cfg.APIKey)
}

// Jooble sends timestamps without a zone, with fractional seconds of varying width.
var updatedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"}

func toRaw(j job) domain.RawListing {
	raw := domain.RawListing{
		Source:       "jooble",
		ExternalID:   j.ID.String(),
		CompanyName:  j.Company,
		Title:        util.CleanText(j.Title),
		Description:  j.Snippet,
		SalaryText:   j.Salary,
		Location:     j.Location,
		ContractType: j.Type,
		RedirectURL:  j.Link,
	}
	for _, layout := range updatedLayouts {
		if t, err := time.Parse(layout, j.Updated); err == nil {
			raw.PostedAt = &t
			break
		}
	}
	return raw
}
