package clinical

import (
	"strings"

	"github.com/clinic/records/internal/platform/apierr"
	"github.com/clinic/records/pkg/validator"
)

// IsNumericVital reports whether v is one to three ASCII digits.
func IsNumericVital(v string) bool {
	return validator.Default().Check(v, validator.TagVital)
}

// ReadingInvalidFields lists the fields of r that block saving, in form
// order. A clinic_staff of only whitespace counts as missing.
func ReadingInvalidFields(r *Reading) []string {
	v := validator.Default()
	return v.InvalidFields(validateReading(r))
}

// ReadingProblems maps each field of r that blocks saving to a message.
func ReadingProblems(r *Reading) map[string]string {
	return validator.Default().FormatValidationErrors(validateReading(r))
}

func validateReading(r *Reading) error {
	c := *r
	c.ClinicStaff = strings.TrimSpace(c.ClinicStaff)
	return validator.Default().Validate(&c)
}

func ValidateReading(r *Reading) bool {
	return len(ReadingInvalidFields(r)) == 0
}

// Validate returns an *apierr.ValidationError naming the failing fields, or nil.
func (r *Reading) Validate() error {
	if fields := ReadingInvalidFields(r); len(fields) > 0 {
		return &apierr.ValidationError{Entity: "clinical reading", Fields: fields}
	}
	return nil
}
