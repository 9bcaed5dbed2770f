// internal/adapter/validate.go
package adapter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

	transforms = map[string]bool{
		TransformTrim:            true,
		TransformStripDateSuffix: true,
		TransformCreatorArtist:   true,
		TransformCreatorDate:     true,
		TransformDimensionsCM:    true,
		TransformGalleryLocation: true,
		TransformYearList:        true,
	}
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("selector", func(fl validator.FieldLevel) bool {
			return CompileSelector(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("transform", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || transforms[v]
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// CompileSelector reports whether selector is a valid CSS selector or XPath
// expression. The empty selector is valid.
func CompileSelector(selector string) error {
	s := strings.TrimSpace(selector)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "(") {
		if _, err := xpath.Compile(s); err != nil {
			return fmt.Errorf("invalid xpath %q: %w", selector, err)
		}
		return nil
	}
	if _, err := cascadia.ParseGroup(s); err != nil {
		return fmt.Errorf("invalid css selector %q: %w", selector, err)
	}
	return nil
}

// Validate checks a for structural errors
func (a *Adapter) Validate() error {
	var errs []error

	if err := validatorInstance().Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, e := range verrs {
			errs = append(errs, fmt.Errorf("%s %s", e.Namespace(), formatValidationError(e)))
		}
	}

	if a.Mode == ModePaginate && a.Listing.Next == "" {
		errs = append(errs, errors.New("Adapter.Listing.Next is required in paginate mode"))
	}
	errs = append(errs, checkFieldMap("Adapter.Detail.Fields", a.Detail.Fields)...)
	for i, s := range a.Detail.Sections {
		errs = append(errs, checkFieldMap(fmt.Sprintf("Adapter.Detail.Sections[%d].Fields", i), s.Fields)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid adapter %q: %w", a.Name, errors.Join(errs...))
	}
	return nil
}

func checkFieldMap(ns string, fm FieldMap) []error {
	var errs []error
	check := func(name string, r *FieldRule) {
		for r != nil {
			if r.Selector == "" && r.Value == "" {
				errs = append(errs, fmt.Errorf("%s.%s needs a selector or a value", ns, name))
			}
			r = r.Fallback
			name += ".Fallback"
		}
	}

	check("ImageURL", fm.ImageURL)
	check("Title", fm.Title)
	check("ArtistName", fm.ArtistName)
	check("Date", fm.Date)
	check("Technique", fm.Technique)
	check("Dimensions", fm.Dimensions)
	check("Signature", fm.Signature)
	check("Location", fm.Location)
	for k, r := range fm.Attributes {
		check("Attributes["+k+"]", &r)
	}
	return errs
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "selector":
		return fmt.Sprintf("is not a valid CSS selector or XPath expression: %v", e.Value())
	case "transform":
		return fmt.Sprintf("names an unknown transform: %v", e.Value())
	case "slug":
		return "must contain only lowercase letters, digits and dashes"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
