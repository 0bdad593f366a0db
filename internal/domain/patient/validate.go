package patient

import (
	"strings"

	"github.com/clinic/records/internal/platform/apierr"
	"github.com/clinic/records/pkg/validator"
)

// Category classifies a field by the format rule it must satisfy.
type Category int

const (
	CategoryFreeText Category = iota
	CategoryName
	CategoryPhone
	CategoryEmail
	CategoryDateOfBirth
)

func (c Category) String() string {
	switch c {
	case CategoryName:
		return "name"
	case CategoryPhone:
		return "phone"
	case CategoryEmail:
		return "email"
	case CategoryDateOfBirth:
		return "date_of_birth"
	default:
		return "free_text"
	}
}

// Rule returns the validator tag for the category; free text has none.
func (c Category) Rule() string {
	switch c {
	case CategoryName:
		return validator.TagPersonName
	case CategoryPhone:
		return validator.TagPhone
	case CategoryEmail:
		return validator.TagEmail
	case CategoryDateOfBirth:
		return validator.TagISODate
	default:
		return ""
	}
}

// Result is the outcome of ValidateRecord.
type Result struct {
	Valid bool
	// InvalidFields lists failing fields in form order.
	InvalidFields []string
}

// ValidateField applies the format rule of field's category to value. Fields
// without a format rule, and unknown names, always pass; emptiness is checked
// by ValidateRecord and IsComplete.
func ValidateField(field, value string) bool {
	f, ok := LookupField(field)
	if !ok {
		return true
	}
	return validator.Default().Check(value, f.Category.Rule())
}

// ValidateRecord reports whether every field of p is filled in and well
// formed.
func ValidateRecord(p *Patient) Result {
	var invalid []string
	for _, f := range schema {
		v := *f.ref(p)
		if isBlank(v) || !ValidateField(f.Name, v) {
			invalid = append(invalid, f.Name)
		}
	}
	return Result{Valid: len(invalid) == 0, InvalidFields: invalid}
}

// IsComplete reports whether no field is empty. It gates the save action
// before the format rules run.
func IsComplete(p *Patient) bool {
	for _, f := range schema {
		if isBlank(*f.ref(p)) {
			return false
		}
	}
	return true
}

// MissingFields lists the empty fields of p in form order.
func MissingFields(p *Patient) []string {
	var missing []string
	for _, f := range schema {
		if isBlank(*f.ref(p)) {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// CheckComplete returns an *apierr.ValidationError marked Missing that names
// the empty fields, or nil when every field is filled in.
func CheckComplete(p *Patient) error {
	if IsComplete(p) {
		return nil
	}
	return &apierr.ValidationError{Entity: "patient", Fields: MissingFields(p), Missing: true}
}

// FieldProblem describes why the named field of p blocks saving, or returns
// "" when the field is acceptable.
func FieldProblem(p *Patient, name string) string {
	f, ok := LookupField(name)
	if !ok {
		return ""
	}
	v := p.Value(name)
	switch {
	case isBlank(v):
		return validator.Message(name, "required")
	case !ValidateField(name, v):
		return validator.Message(name, f.Category.Rule())
	}
	return ""
}

// Validate returns an *apierr.ValidationError naming the failing fields, or nil.
func (p *Patient) Validate() error {
	res := ValidateRecord(p)
	if res.Valid {
		return nil
	}
	return &apierr.ValidationError{Entity: "patient", Fields: res.InvalidFields}
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
