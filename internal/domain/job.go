package domain

import (
	"time"

	"github.com/google/uuid"
)

// RawListing is what a connector hands to the normalizer. Connectors copy
// provider fields in as-is; defaults are applied later.
type RawListing struct {
	Source       string // adzuna/jooble/lever/alerts
	ExternalID   string
	CompanyName  string
	Title        string
	Description  string
	Categories   []string
	SalaryMin    float64
	SalaryMax    float64
	SalaryText   string // preformatted salary when the provider sends one
	Location     string
	ContractType string
	RedirectURL  string
	LogoURL      string
	PostedAt     *time.Time
}

// Job is the canonical record persisted by the pipeline.
type Job struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title" validate:"required,notblank"`
	Description     string      `json:"description"`
	Requirements    []string    `json:"requirements"`
	Salary          string      `json:"salary" validate:"required"`
	Location        string      `json:"location" validate:"required"`
	JobType         string      `json:"jobType" validate:"required"`
	ExperienceLevel int         `json:"experienceLevel" validate:"min=1"`
	Position        int         `json:"position" validate:"min=1"`
	CompanyID       uuid.UUID   `json:"company"`
	CompanyName     string      `json:"companyName"`
	CreatedBy       uuid.UUID   `json:"createdBy"`
	Applications    []uuid.UUID `json:"applications"`
	ApplicationLink *string     `json:"applicationLink"`
	CompanyLogo     *string     `json:"companyLogo"`
	Source          string      `json:"source"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// NaturalKey identifies a job for deduplication. Comparison is exact.
type NaturalKey struct {
	Title     string
	Location  string
	CompanyID uuid.UUID
}

func (j Job) Key() NaturalKey {
	return NaturalKey{Title: j.Title, Location: j.Location, CompanyID: j.CompanyID}
}

// IsExternal reports whether applying happens off-platform.
func (j Job) IsExternal() bool { return j.ApplicationLink != nil }
