package normalize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"jobboard-engine/internal/domain"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate rejects records that must not reach the store.
func Validate(j domain.Job) error {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("invalid job %q: %w", j.Title, err)
	}
	return nil
}
