// Package validation builds the go-playground validator used for student
// input, with the project's custom rules registered on it.
package validation

import (
	"reflect"
	"strings"

	"github.com/aanand-mishra/student-records/internal/normalize"
	"github.com/go-playground/validator/v10"
)

// TagBirthDate is the custom tag for lenient birth-date validation.
const TagBirthDate = "birthdate"

// New returns a *validator.Validate with:
//
//   - the "birthdate" rule: the string must be accepted by normalize.Date
//   - field names reported by their json tag ("birth_date", not
//     "BirthDate"), which is what API clients and the console know them by
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// RegisterValidation only fails for an empty tag or a nil func.
	_ = v.RegisterValidation(TagBirthDate, func(fl validator.FieldLevel) bool {
		_, ok := normalize.Date(fl.Field().String())
		return ok
	})

	return v
}
