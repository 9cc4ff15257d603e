package normalize

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-engine/internal/avatar"
	"jobboard-engine/internal/domain"
)

func testPlaceholders() domain.Placeholders {
	return domain.Placeholders{CompanyID: uuid.New(), CreatedBy: uuid.New()}
}

func TestNormalize_Defaults(t *testing.T) {
	ph := testPlaceholders()

	j := Normalize(domain.RawListing{Source: "jooble", Title: "Go Developer"}, ph)

	assert.Equal(t, "Go Developer", j.Title)
	assert.Equal(t, NotDisclosed, j.Salary)
	assert.Equal(t, DefaultLocation, j.Location)
	assert.Equal(t, DefaultJobType, j.JobType)
	assert.Equal(t, 1, j.ExperienceLevel)
	assert.Equal(t, 1, j.Position)
	assert.Equal(t, ph.CompanyID, j.CompanyID)
	assert.Equal(t, ph.CreatedBy, j.CreatedBy)
	assert.Equal(t, UnknownCompany, j.CompanyName)
	assert.Equal(t, "<p><strong>Company:</strong> Unknown Company</p>Not provided", j.Description)
	assert.NotNil(t, j.Requirements)
	assert.Empty(t, j.Requirements)
	assert.NotNil(t, j.Applications)
	assert.Empty(t, j.Applications)
	assert.Nil(t, j.ApplicationLink)
	require.NotNil(t, j.CompanyLogo)
	assert.Equal(t, avatar.Resolve(UnknownCompany), *j.CompanyLogo)
	assert.Equal(t, "jooble", j.Source)
}

func TestNormalize_WhitespaceCountsAsMissing(t *testing.T) {
	j := Normalize(domain.RawListing{Title: "SRE", Location: "  ", ContractType: "\t", CompanyName: "   "}, testPlaceholders())

	assert.Equal(t, DefaultLocation, j.Location)
	assert.Equal(t, DefaultJobType, j.JobType)
	assert.Equal(t, UnknownCompany, j.CompanyName)
}

func TestNormalize_ProviderValuesWin(t *testing.T) {
	raw := domain.RawListing{
		Source:       "adzuna",
		CompanyName:  "Foo Corp",
		Title:        "Backend Engineer",
		Description:  "Build APIs",
		Categories:   []string{"IT Jobs", "", "Engineering"},
		SalaryMin:    500000,
		SalaryMax:    800000.5,
		Location:     "Bangalore",
		ContractType: "permanent",
		RedirectURL:  "https://foo.example/apply",
		LogoURL:      "https://cdn.example/foo.png",
	}

	j := Normalize(raw, testPlaceholders())

	assert.Equal(t, "500000 - 800000.5", j.Salary)
	assert.Equal(t, "Bangalore", j.Location)
	assert.Equal(t, "permanent", j.JobType)
	assert.Equal(t, []string{"IT Jobs", "Engineering"}, j.Requirements)
	assert.Equal(t, "<p><strong>Company:</strong> Foo Corp</p>Build APIs", j.Description)
	require.NotNil(t, j.ApplicationLink)
	assert.Equal(t, "https://foo.example/apply", *j.ApplicationLink)
	require.NotNil(t, j.CompanyLogo)
	assert.Equal(t, "https://cdn.example/foo.png", *j.CompanyLogo)
}

func TestNormalize_SalaryTextPreferred(t *testing.T) {
	j := Normalize(domain.RawListing{Title: "x", SalaryText: "₹10L - ₹15L", SalaryMin: 1}, testPlaceholders())
	assert.Equal(t, "₹10L - ₹15L", j.Salary)
}

func TestFormatSalary(t *testing.T) {
	assert.Equal(t, "100 - 200", FormatSalary(100, 200))
	assert.Equal(t, "100", FormatSalary(100, 0))
	assert.Equal(t, "200", FormatSalary(0, 200))
	assert.Equal(t, "", FormatSalary(0, 0))
}

func TestNormalize_KeyIgnoresNonKeyFields(t *testing.T) {
	ph := testPlaceholders()
	a := Normalize(domain.RawListing{Title: "Dev", Location: "Pune", Description: "a", SalaryMin: 1}, ph)
	b := Normalize(domain.RawListing{Title: "Dev", Location: "Pune", Description: "b", LogoURL: "https://x/y.png"}, ph)

	assert.Equal(t, a.Key(), b.Key())
}
