package alerts

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/scrape/util"
)

var (
	reJobID  = regexp.MustCompile(`/jobs/view/(\d+)`)
	reSalary = regexp.MustCompile(`[$₹€£]\s?\d[\d,.]*\s?[KkMmL]?(?:\s*-\s*[$₹€£]\s?\d[\d,.]*\s?[KkMmL]?)?\s*/\s*(?:year|yr|month|hour|hr)`)
)

// ParseAlertHTML extracts job cards from a job-alert email. Several anchors
// usually point at the same posting (logo, title, "view job"), so cards are
// merged by posting id before anything is emitted.
func ParseAlertHTML(htmlBody string) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	var order []string
	byKey := map[string]*domain.RawListing{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		jobURL := unwrapRedirect(strings.TrimSpace(href))
		lower := strings.ToLower(jobURL)
		if !strings.Contains(lower, "linkedin.com") || !strings.Contains(lower, "/jobs/view/") {
			return
		}
		jobURL = util.CanonicalizeURL(jobURL)

		key := jobURL
		if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
			key = "linkedin:" + m[1]
		}
		j, ok := byKey[key]
		if !ok {
			j = &domain.RawListing{Source: "alerts", ExternalID: key, RedirectURL: jobURL}
			byKey[key] = j
			order = append(order, key)
		}

		if t := cleanTitle(a.Text()); betterTitle(t, j.Title) {
			j.Title = t
		}
		if j.LogoURL == "" {
			if src, ok := a.Find("img[src]").Attr("src"); ok && strings.HasPrefix(src, "https://") {
				j.LogoURL = src
			}
		}

		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").Each(func(_ int, p *goquery.Selection) {
			t := util.CleanText(p.Text())
			if t == "" {
				return
			}
			if j.CompanyName == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				j.CompanyName = strings.TrimSpace(parts[0])
				j.Location = util.NormalizeLocation(parts[1])
				return
			}
			if c := cleanTitle(t); betterTitle(c, j.Title) {
				j.Title = c
			}
		})
		if j.SalaryText == "" {
			j.SalaryText = strings.TrimSpace(reSalary.FindString(util.CleanText(card.Text())))
		}
	})

	out := make([]domain.RawListing, 0, len(order))
	for _, k := range order {
		j := byKey[k]
		if j.Title == "" {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

// unwrapRedirect follows ?url= style tracking wrappers.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	for _, k := range []string{"url", "q"} {
		if raw := u.Query().Get(k); raw != "" {
			if uu, err := url.Parse(raw); err == nil && uu.Host != "" {
				return uu.String()
			}
		}
	}
	return u.String()
}

func cleanTitle(s string) string {
	s = util.CleanText(s)
	for _, junk := range []string{"Actively recruiting", "Easy Apply", "Promoted"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	s = util.CleanText(s)
	low := strings.ToLower(s)
	for _, bad := range []string{"alumni", "connections", "applicants", "unsubscribe", "view job", "see all jobs"} {
		if strings.Contains(low, bad) {
			return ""
		}
	}
	return s
}

func betterTitle(candidate, current string) bool {
	if candidate == "" {
		return false
	}
	cs := titleScore(candidate)
	if current == "" {
		return cs >= 3
	}
	return cs >= titleScore(current)+3
}

// titleScore rates how much s looks like a job title rather than a
// company/location line, salary or call to action.
func titleScore(s string) int {
	l := strings.ToLower(s)
	score := 0

	if strings.Contains(l, "http") || strings.Contains(l, "www.") {
		return -30
	}
	if strings.Contains(s, " · ") {
		score -= 6
	}
	if reSalary.MatchString(s) || strings.ContainsAny(s, "$₹€£") {
		score -= 8
	}
	for _, cta := range []string{"apply", "see details", "learn more", "sign in"} {
		if strings.Contains(l, cta) {
			score -= 6
		}
	}
	for _, w := range []string{
		"engineer", "developer", "software", "backend", "frontend", "full stack",
		"devops", "sre", "data", "scientist", "analyst", "architect",
		"manager", "lead", "intern", "designer", "consultant",
	} {
		if strings.Contains(l, w) {
			score += 4
			break
		}
	}
	switch n := len([]rune(s)); {
	case n >= 6 && n <= 80:
		score += 2
	case n < 4 || n > 140:
		score -= 6
	}
	if strings.HasSuffix(s, ".") {
		score -= 4
	}
	return score
}
