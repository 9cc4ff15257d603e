// Package normalize maps provider listings onto the canonical job record.
package normalize

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"jobboard-engine/internal/avatar"
	"jobboard-engine/internal/domain"
)

const (
	NotDisclosed    = "Not disclosed"
	NotProvided     = "Not provided"
	UnknownCompany  = "Unknown Company"
	DefaultLocation = "Remote"
	DefaultJobType  = "Full-time"
)

// Normalize turns one raw listing into a job ready for the dedupe check.
// It never fails; records that are still unusable are caught by Validate.
func Normalize(raw domain.RawListing, ph domain.Placeholders) domain.Job {
	companyName := strings.TrimSpace(raw.CompanyName)
	if companyName == "" {
		companyName = UnknownCompany
	}

	j := domain.Job{
		Title:           raw.Title,
		Description:     Annotate(companyName, raw.Description),
		Requirements:    requirements(raw.Categories),
		Salary:          salary(raw),
		Location:        orDefault(raw.Location, DefaultLocation),
		JobType:         orDefault(raw.ContractType, DefaultJobType),
		ExperienceLevel: 1,
		Position:        1,
		CompanyID:       ph.CompanyID,
		CompanyName:     companyName,
		CreatedBy:       ph.CreatedBy,
		Applications:    []uuid.UUID{},
		ApplicationLink: optional(raw.RedirectURL),
		Source:          raw.Source,
	}

	logo := strings.TrimSpace(raw.LogoURL)
	if logo == "" {
		logo = avatar.Resolve(companyName)
	}
	j.CompanyLogo = optional(logo)

	return j
}

// FormatSalary renders a numeric range as "min - max". A single bound is
// rendered alone; no bounds yields "".
func FormatSalary(lo, hi float64) string {
	switch {
	case lo > 0 && hi > 0:
		return formatAmount(lo) + " - " + formatAmount(hi)
	case lo > 0:
		return formatAmount(lo)
	case hi > 0:
		return formatAmount(hi)
	default:
		return ""
	}
}

func salary(raw domain.RawListing) string {
	if s := strings.TrimSpace(raw.SalaryText); s != "" {
		return s
	}
	if s := FormatSalary(raw.SalaryMin, raw.SalaryMax); s != "" {
		return s
	}
	return NotDisclosed
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func requirements(cats []string) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		if strings.TrimSpace(c) == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
