package domain

import "github.com/google/uuid"

// Placeholders are the shared company and creator references assigned to
// every externally sourced job.
type Placeholders struct {
	CompanyID uuid.UUID
	CreatedBy uuid.UUID
}

// DefaultPlaceholders derives stable ids so records written by one process
// still dedupe after a restart.
func DefaultPlaceholders() Placeholders {
	return Placeholders{
		CompanyID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("jobboard:placeholder:company")),
		CreatedBy: uuid.NewSHA1(uuid.NameSpaceURL, []byte("jobboard:placeholder:created-by")),
	}
}
