package contentdef

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(time.RFC3339Nano, fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("content_status", func(fl validator.FieldLevel) bool {
			return domain.ContentStatus(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("nonneg_int", func(fl validator.FieldLevel) bool {
			return digitsPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks a decoded definition. It returns a *domain.ValidationError
// listing every offending field path, or nil.
func Validate(def *Definition) error {
	var errs []domain.FieldError

	if err := structValidator().Struct(def); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate definition: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, domain.FieldError{Field: fieldPath(fe.Namespace()), Message: describe(fe)})
		}
	}

	errs = append(errs, checkTopics(def.Topics)...)
	errs = append(errs, checkUniqueSlugs(def.Scholars)...)

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// fieldPath drops the root struct name from a validator namespace:
// "Definition.scholars[0].slug" -> "scholars[0].slug".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eq":
		return fmt.Sprintf("must be %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "url":
		return "must be a valid absolute URL"
	case "slug":
		return "must be a lowercase slug (a-z, 0-9, single dashes)"
	case "rfc3339":
		return "must be an RFC 3339 timestamp"
	case "content_status":
		return "must be one of draft, review, published, archived"
	case "nonneg_int":
		return "must be a non-negative integer"
	case "alphanum":
		return "must be alphanumeric"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func checkTopics(topics []TopicDef) []domain.FieldError {
	var errs []domain.FieldError
	seen := make(map[string]int, len(topics))
	for i, t := range topics {
		path := fmt.Sprintf("topics[%d]", i)
		if first, dup := seen[t.Slug]; dup && t.Slug != "" {
			errs = append(errs, domain.FieldError{
				Field:   path + ".slug",
				Message: fmt.Sprintf("duplicates topics[%d]", first),
			})
			continue
		}
		seen[t.Slug] = i
		if t.ParentSlug != nil && *t.ParentSlug == t.Slug {
			errs = append(errs, domain.FieldError{Field: path + ".parentSlug", Message: "must not reference the topic itself"})
		}
	}
	return errs
}

// checkUniqueSlugs rejects natural-key collisions inside one document, which
// upserts would otherwise silently merge.
func checkUniqueSlugs(scholars []ScholarDef) []domain.FieldError {
	var errs []domain.FieldError
	dup := func(seen map[string]string, slug, path string) {
		if slug == "" {
			return
		}
		if first, ok := seen[slug]; ok {
			errs = append(errs, domain.FieldError{Field: path + ".slug", Message: "duplicates " + first})
			return
		}
		seen[slug] = path
	}

	scholarSlugs := make(map[string]string)
	for si, s := range scholars {
		sp := fmt.Sprintf("scholars[%d]", si)
		dup(scholarSlugs, s.Slug, sp)

		collections := make(map[string]string)
		series := make(map[string]string)
		lectures := make(map[string]string)

		for ci, c := range s.Collections {
			cp := fmt.Sprintf("%s.collections[%d]", sp, ci)
			dup(collections, c.Slug, cp)
			for ri, r := range c.Series {
				rp := fmt.Sprintf("%s.series[%d]", cp, ri)
				dup(series, r.Slug, rp)
				for li, l := range r.Lectures {
					dup(lectures, l.Slug, fmt.Sprintf("%s.lectures[%d]", rp, li))
				}
			}
		}
		for ri, r := range s.Series {
			rp := fmt.Sprintf("%s.series[%d]", sp, ri)
			dup(series, r.Slug, rp)
			for li, l := range r.Lectures {
				dup(lectures, l.Slug, fmt.Sprintf("%s.lectures[%d]", rp, li))
			}
		}
		for li, l := range s.Lectures {
			dup(lectures, l.Slug, fmt.Sprintf("%s.lectures[%d]", sp, li))
		}
	}
	return errs
}
