package contentdef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// Format is the serialization of a definition document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFile reads and parses a definition document from disk.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes, validates and applies defaults to a definition document.
// Unknown fields are rejected. Every failure is a *domain.ValidationError.
func Parse(data []byte, format Format) (*Definition, error) {
	var (
		def Definition
		err error
	)
	switch format {
	case FormatYAML:
		err = decodeYAML(data, &def)
	default:
		err = decodeJSON(data, &def)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(&def); err != nil {
		return nil, err
	}
	ApplyDefaults(&def)
	return &def, nil
}

func decodeJSON(data []byte, def *Definition) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(def); err != nil {
		return jsonDecodeError(err)
	}
	if dec.More() {
		return domain.NewValidationError("document", "unexpected data after the top-level object")
	}
	return nil
}

func jsonDecodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("document", "is empty")
	case errors.As(err, &syntaxErr):
		return domain.NewValidationError("document", fmt.Sprintf("invalid JSON at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "document"
		}
		return domain.NewValidationError(field, fmt.Sprintf("must be %s, got %s", typeErr.Type.String(), typeErr.Value))
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return domain.NewValidationError("document", strings.TrimPrefix(err.Error(), "json: "))
	default:
		return domain.NewValidationError("document", err.Error())
	}
}

func decodeYAML(data []byte, def *Definition) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(def)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return domain.NewValidationError("document", "is empty")
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		fields := make([]domain.FieldError, 0, len(typeErr.Errors))
		for _, msg := range typeErr.Errors {
			fields = append(fields, domain.FieldError{Field: "document", Message: msg})
		}
		return domain.NewValidationErrors(fields)
	}
	return domain.NewValidationError("document", err.Error())
}

// ApplyDefaults fills omitted optional fields: status becomes draft, topic
// and audio lists become empty, and scholars default to active.
func ApplyDefaults(def *Definition) {
	if def.Topics == nil {
		def.Topics = []TopicDef{}
	}
	if def.Scholars == nil {
		def.Scholars = []ScholarDef{}
	}
	for i := range def.Scholars {
		s := &def.Scholars[i]
		if s.IsActive == nil {
			active := true
			s.IsActive = &active
		}
		for ci := range s.Collections {
			c := &s.Collections[ci]
			c.Status = defaultStatus(c.Status)
			c.TopicSlugs = emptyIfNil(c.TopicSlugs)
			defaultSeries(c.Series)
		}
		defaultSeries(s.Series)
		defaultLectures(s.Lectures)
	}
}

func defaultSeries(series []SeriesDef) {
	for i := range series {
		r := &series[i]
		r.Status = defaultStatus(r.Status)
		r.TopicSlugs = emptyIfNil(r.TopicSlugs)
		defaultLectures(r.Lectures)
	}
}

func defaultLectures(lectures []LectureDef) {
	for i := range lectures {
		l := &lectures[i]
		l.Status = defaultStatus(l.Status)
		l.TopicSlugs = emptyIfNil(l.TopicSlugs)
		if l.AudioAssets == nil {
			l.AudioAssets = []AudioAssetDef{}
		}
	}
}

func defaultStatus(s domain.ContentStatus) domain.ContentStatus {
	if s == "" {
		return domain.ContentStatusDraft
	}
	return s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
