package httpapi

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/normalize"
)

const externalCompany = "External Company"

// JobView is the shape the job board frontend reads.
type JobView struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	JobType         string    `json:"jobType"`
	Salary          string    `json:"salary"`
	Company         string    `json:"company"`
	CompanyLogo     *string   `json:"companyLogo"`
	ApplicationLink *string   `json:"applicationLink"`
	CreatedAt       time.Time `json:"createdAt"`
	IsExternal      bool      `json:"isExternal"`
}

func toView(j domain.Job) JobView {
	return JobView{
		ID:              j.ID,
		Title:           j.Title,
		Description:     j.Description,
		Location:        j.Location,
		JobType:         j.JobType,
		Salary:          j.Salary,
		Company:         displayCompany(j),
		CompanyLogo:     j.CompanyLogo,
		ApplicationLink: j.ApplicationLink,
		CreatedAt:       j.CreatedAt,
		IsExternal:      j.IsExternal(),
	}
}

func displayCompany(j domain.Job) string {
	if name, ok := normalize.CompanyFromDescription(j.Description); ok {
		return name
	}
	if name := strings.TrimSpace(j.CompanyName); name != "" {
		return name
	}
	return externalCompany
}

// JobDetailView is served for a single job and carries the full record.
type JobDetailView struct {
	JobView
	Requirements    []string    `json:"requirements"`
	ExperienceLevel int         `json:"experienceLevel"`
	Position        int         `json:"position"`
	Applications    []uuid.UUID `json:"applications"`
	CreatedBy       uuid.UUID   `json:"createdBy"`
	Source          string      `json:"source"`
}

func toDetailView(j domain.Job) JobDetailView {
	d := JobDetailView{
		JobView:         toView(j),
		Requirements:    j.Requirements,
		ExperienceLevel: j.ExperienceLevel,
		Position:        j.Position,
		Applications:    j.Applications,
		CreatedBy:       j.CreatedBy,
		Source:          j.Source,
	}
	if d.Requirements == nil {
		d.Requirements = []string{}
	}
	if d.Applications == nil {
		d.Applications = []uuid.UUID{}
	}
	return d
}
