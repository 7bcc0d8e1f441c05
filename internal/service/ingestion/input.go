package ingestion

import (
	"strings"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// RunInput holds the parameters of one ingestion run.
type RunInput struct {
	Definition *contentdef.Definition
	Tag        string
	// Environment defaults to the configured ingestion environment.
	Environment string
	DryRun      bool
	// StrictAudioUpload turns the local file:// fallback into an error.
	StrictAudioUpload bool
	// AudioDir defaults to the configured audio directory.
	AudioDir string
}

func (i *RunInput) applyDefaults(cfg config.IngestionConfig) {
	i.Tag = strings.TrimSpace(i.Tag)
	i.Environment = strings.TrimSpace(i.Environment)
	if i.Environment == "" {
		i.Environment = cfg.Environment
	}
	if i.AudioDir == "" {
		i.AudioDir = cfg.AudioDir
	}
}

// Validate checks all fields and collects all errors.
func (i *RunInput) Validate() error {
	var errs []domain.FieldError

	if i.Definition == nil {
		errs = append(errs, domain.FieldError{Field: "definition", Message: "required"})
	}
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
