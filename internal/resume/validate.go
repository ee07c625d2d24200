package resume

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report json field names so problems match what clients send
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

var collectionField = map[SectionKind]string{
	KindExperience: "experience",
	KindEducation:  "education",
	KindWebsites:   "websites",
	KindProjects:   "projects",
	KindCustom:     "customSections",
}

// FieldProblem is one schema violation.
type FieldProblem struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

// ValidationError lists every problem found in a Document.
type ValidationError struct {
	Problems []FieldProblem `json:"problems"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Problem)
	}
	return "invalid document: " + strings.Join(parts, "; ")
}

// Validate checks structural conformance of doc: required fields, formats,
// length caps and identity-token uniqueness within each collection.
func Validate(doc Document) error {
	var problems []FieldProblem
	if err := validatorInstance().Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate document: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, FieldProblem{
				Field:   strings.TrimPrefix(fe.Namespace(), "Document."),
				Problem: describe(fe),
			})
		}
	}
	for _, kind := range Kinds {
		if !kind.Identified() {
			continue
		}
		seen := map[string]bool{}
		for i, id := range doc.IDs(kind) {
			if id == "" {
				continue
			}
			if seen[id] {
				problems = append(problems, FieldProblem{
					Field:   fmt.Sprintf("%s[%d].id", collectionField[kind], i),
					Problem: fmt.Sprintf("duplicate id %q", id),
				})
			}
			seen[id] = true
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be an email address"
	case "url":
		return "must be an absolute URL"
	}
	return "failed " + fe.Tag()
}
