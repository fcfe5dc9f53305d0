package descriptor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vitalvas/servlet/container"
	"github.com/vitalvas/servlet/mapping"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails on an empty tag or a nil function.
		_ = v.RegisterValidation("contextpath", func(fl validator.FieldLevel) bool {
			return container.ValidContextPath(fl.Field().String())
		})
		_ = v.RegisterValidation("urlpattern", func(fl validator.FieldLevel) bool {
			_, err := mapping.ParsePattern(fl.Field().String(), "")
			return err == nil
		})
		v.RegisterStructValidation(validatePatternOwners, Context{})

		validate = v
	})
	return validate
}

// validatePatternOwners reports patterns mapped to more than one servlet of
// the same context. Duplicates within one servlet are caught by "unique".
func validatePatternOwners(sl validator.StructLevel) {
	c := sl.Current().Interface().(Context)

	owners := make(map[string]string)
	for i, s := range c.Servlets {
		for j, p := range s.Mappings {
			if owner, ok := owners[p]; ok && owner != s.Name {
				sl.ReportError(p, fmt.Sprintf("Servlets[%d].Mappings[%d]", i, j), "Mappings", "patternowner", owner)
				continue
			}
			owners[p] = s.Name
		}
	}
}

// Validate checks d against the descriptor rules: at least one context,
// unique context paths, well-formed patterns, unique servlet names, known
// filters, and each pattern mapped to a single servlet per context.
func Validate(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}

	err := instance().Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidDescriptor, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Descriptor.")

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "unique":
		return field + " has duplicate entries"
	case "oneof":
		return fmt.Sprintf("%s: unknown filter %q", field, fe.Value())
	case "contextpath":
		return fmt.Sprintf("%s: invalid context path %q", field, fe.Value())
	case "urlpattern":
		return fmt.Sprintf("%s: invalid url pattern %q", field, fe.Value())
	case "patternowner":
		return fmt.Sprintf("%s: pattern %q is already mapped to %q", field, fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}
