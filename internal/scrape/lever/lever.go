// Package lever reads the public Lever postings API for a configured list of
// companies. No credentials are needed; an empty company list disables it.
package lever

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/util"
)

const DefaultBaseURL = "https://api.lever.co"

type Config struct {
	Companies  []Company
	BaseURL    string
	Workers    int           // 8
	PerCompany time.Duration // 10s
	Timeout    time.Duration
}

type Company struct {
	Slug string // api.lever.co/v0/postings/<slug>
	Name string
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
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.PerCompany <= 0 {
		cfg.PerCompany = 10 * time.Second
	}
	return &Scraper{
		cfg:     cfg,
		hc:      util.NewClient(cfg.Timeout),
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "lever" }

type posting struct {
	ID               string `json:"id"`
	Text             string `json:"text"` // title
	HostedURL        string `json:"hostedUrl"`
	CreatedAt        int64  `json:"createdAt"` // ms epoch
	Description      string `json:"description"`
	DescriptionPlain string `json:"descriptionPlain"`
	Categories       struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
}

// Fetch queries every company with a small worker pool. A failing company
// is logged and skipped; output keeps the configured company order.
func (s *Scraper) Fetch(ctx context.Context) []domain.RawListing {
	companies := s.cfg.Companies
	if len(companies) == 0 {
		log.Printf("[lever] level=warn msg=%q", "no companies configured; skipping")
		return nil
	}

	type work struct {
		idx int
		co  Company
	}
	results := make([][]domain.RawListing, len(companies))
	workCh := make(chan work)

	var wg sync.WaitGroup
	workers := min(s.cfg.Workers, len(companies))
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for w := range workCh {
				cctx, cancel := context.WithTimeout(ctx, s.cfg.PerCompany)
				listings, err := s.fetchCompany(cctx, w.co)
				cancel()

				if err != nil {
					log.Printf("[lever] level=error company=%q slug=%q err=%v", w.co.Name, w.co.Slug, err)
					continue
				}
				results[w.idx] = listings
			}
		}()
	}

	go func() {
		defer close(workCh)
		for i, co := range companies {
			select {
			case <-ctx.Done():
				return
			case workCh <- work{idx: i, co: co}:
			}
		}
	}()

	wg.Wait()

	var out []domain.RawListing
	for _, batch := range results {
		out = append(out, batch...)
	}
	log.Printf("[lever] companies=%d fetched=%d", len(companies), len(out))
	return out
}

func (s *Scraper) fetchCompany(ctx context.Context, co Company) ([]domain.RawListing, error) {
	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(co.Slug))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("lever request: %w", err)
	}

	var postings []posting
	if err := util.DoJSON(ctx, s.hc, s.limiter, req, &postings); err != nil {
		return nil, fmt.Errorf("lever get: %w", err)
	}

	name := co.Name
	if name == "" {
		name = co.Slug
	}

	out := make([]domain.RawListing, 0, len(postings))
	for _, p := range postings {
		if p.ID == "" || strings.TrimSpace(p.Text) == "" {
			continue
		}
		raw := domain.RawListing{
			Source:       "lever",
			ExternalID:   fmt.Sprintf("lever:%s:%s", co.Slug, p.ID),
			CompanyName:  name,
			Title:        util.CleanText(p.Text),
			Description:  p.Description,
			Location:     util.NormalizeLocation(p.Categories.Location),
			ContractType: p.Categories.Commitment,
			RedirectURL:  p.HostedURL,
		}
		if raw.Description == "" {
			raw.Description = p.DescriptionPlain
		}
		if p.Categories.Team != "" {
			raw.Categories = []string{p.Categories.Team}
		}
		if p.CreatedAt > 0 {
			t := time.UnixMilli(p.CreatedAt).UTC()
			raw.PostedAt = &t
		}
		out = append(out, raw)
	}

	for i := range out {
		if out[i].Location == "" && out[i].RedirectURL != "" {
			if loc, err := s.hydrateLocation(ctx, out[i].RedirectURL); err == nil {
				out[i].Location = loc
			}
		}
	}
	return out, nil
}

// hydrateLocation reads the hosted posting page when the API left the
// location blank.
func (s *Scraper) hydrateLocation(ctx context.Context, pageURL string) (string, error) {
	if err := s.limiter.WaitURL(ctx, pageURL); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", util.UserAgent)

	res, err := s.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", fmt.Errorf("job page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}
	for _, sel := range []string{
		"[itemprop='jobLocation']",
		".posting-categories .location",
		".location",
	} {
		if t := util.NormalizeLocation(doc.Find(sel).First().Text()); t != "" {
			return t, nil
		}
	}
	return "", nil
}
