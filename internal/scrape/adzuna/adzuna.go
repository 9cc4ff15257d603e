// Package adzuna fetches the newest postings from the Adzuna search API.
package adzuna

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/util"
)

const DefaultBaseURL = "https://api.adzuna.com"

type Config struct {
	AppID  string
	AppKey string

	BaseURL        string // DefaultBaseURL when empty
	Country        string // "in"
	What           string // "developer"
	SortBy         string // "date"
	MaxDaysOld     int    // 1
	ResultsPerPage int    // 10
	Page           int    // 1
	Timeout        time.Duration
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
	if cfg.Country == "" {
		cfg.Country = "in"
	}
	if cfg.What == "" {
		cfg.What = "developer"
	}
	if cfg.SortBy == "" {
		cfg.SortBy = "date"
	}
	if cfg.MaxDaysOld <= 0 {
		cfg.MaxDaysOld = 1
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = 10
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

func (s *Scraper) Name() string { return "adzuna" }

type searchResponse struct {
	Count   int      `json:"count"`
	Results []result `json:"results"`
}

type result struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	ContractType string  `json:"contract_type"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	Company      struct {
		DisplayName string `json:"display_name"`
		Logo        string `json:"logo"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Category struct {
		Label string `json:"label"`
	} `json:"category"`
}

// Fetch returns the current page of results. Missing credentials and upstream
// failures are logged and yield no listings.
func (s *Scraper) Fetch(ctx context.Context) []domain.RawListing {
	if strings.TrimSpace(s.cfg.AppID) == "" || strings.TrimSpace(s.cfg.AppKey) == "" {
		log.Printf("[adzuna] level=warn msg=%q", "app_id/app_key not configured; skipping")
		return nil
	}

	resp, err := s.search(ctx)
	if err != nil {
		log.Printf("[adzuna] level=error country=%s what=%q err=%v", s.cfg.Country, s.cfg.What, err)
		return nil
	}

	out := make([]domain.RawListing, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, toRaw(r))
	}
	log.Printf("[adzuna] fetched=%d total=%d", len(out), resp.Count)
	return out
}

func (s *Scraper) search(ctx context.Context) (*searchResponse, error) {
	q := url.Values{}
	q.Set("app_id", s.cfg.AppID)
	q.Set("app_key", s.cfg.AppKey)
	q.Set("what", s.cfg.What)
	q.Set("sort_by", s.cfg.SortBy)
	q.Set("max_days_old", strconv.Itoa(s.cfg.MaxDaysOld))
	q.Set("results_per_page", strconv.Itoa(s.cfg.ResultsPerPage))

	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/%d?%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(s.cfg.Country), s.cfg.Page, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var resp searchResponse
	if err := util.DoJSON(ctx, s.hc, s.limiter, req, &resp); err != nil {
		// url.Error embeds the full URL, app_key included.
		return nil, fmt.Errorf("search: %s", util.Redact(err.Error(), s.cfg.AppKey))
	}
	return &resp, nil
}

func toRaw(r result) domain.RawListing {
	raw := domain.RawListing{
		Source:       "adzuna",
		ExternalID:   r.ID,
		CompanyName:  r.Company.DisplayName,
		Title:        r.Title,
		Description:  r.Description,
		SalaryMin:    r.SalaryMin,
		SalaryMax:    r.SalaryMax,
		Location:     r.Location.DisplayName,
		ContractType: r.ContractType,
		RedirectURL:  r.RedirectURL,
		LogoURL:      strings.TrimSpace(r.Company.Logo),
	}
	if r.Category.Label != "" {
		raw.Categories = []string{r.Category.Label}
	}
	if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
		raw.PostedAt = &t
	}
	return raw
}
