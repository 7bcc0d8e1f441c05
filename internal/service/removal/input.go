package removal

import (
	"strings"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// RemoveInput holds the parameters of one removal.
type RemoveInput struct {
	Tag string
	// Environment defaults to the configured ingestion environment.
	Environment string
	// DryRun reports what would be removed without deleting anything.
	DryRun bool
	// SkipStorage leaves objects in the object store untouched.
	SkipStorage bool
}

func (i *RemoveInput) applyDefaults(cfg config.IngestionConfig) {
	i.Tag = strings.TrimSpace(i.Tag)
	i.Environment = strings.TrimSpace(i.Environment)
	if i.Environment == "" {
		i.Environment = cfg.Environment
	}
}

// Validate checks all fields and collects all errors.
func (i *RemoveInput) Validate() error {
	var errs []domain.FieldError

	switch {
	case i.Tag == "":
		errs = append(errs, domain.FieldError{Field: "tag", Message: "required"})
	case !domain.IsKeySafe(i.Tag):
		errs = append(errs, domain.FieldError{Field: "tag", Message: domain.KeySafeMessage})
	}
	switch {
	case i.Environment == "":
		errs = append(errs, domain.FieldError{Field: "environment", Message: "required"})
	case !domain.IsKeySafe(i.Environment):
		errs = append(errs, domain.FieldError{Field: "environment", Message: domain.KeySafeMessage})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
