// Package validator wraps go-playground/validator with the format rules used
// by the patient and clinical-reading schemas.
package validator

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Tags registered on top of the go-playground built-ins.
const (
	TagPersonName = "person_name"
	TagPhone      = "phone10"
	TagEmail      = "simple_email"
	TagISODate    = "iso_date"
	TagVital      = "vital"
)

// emailChar is one character that is neither '@' nor whitespace. RE2's \s is
// ASCII only, so \v and the Unicode spaces are listed explicitly.
const emailChar = `[^\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}@]`

var (
	personNameRegex = regexp.MustCompile(`^[A-Za-z]+$`)
	phoneRegex      = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex      = regexp.MustCompile("^" + emailChar + "+@" + emailChar + `+\.` + emailChar + "+$")
	isoDateRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	vitalRegex      = regexp.MustCompile(`^\d{1,3}$`)
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report json names ("bp_systolic") rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, TagPersonName, personNameRegex)
	mustRegister(v, TagPhone, phoneRegex)
	mustRegister(v, TagEmail, emailRegex)
	mustRegister(v, TagISODate, isoDateRegex)
	mustRegister(v, TagVital, vitalRegex)

	return &CustomValidator{validator: v}
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic("validator: register " + tag + ": " + err.Error())
	}
}

var (
	defaultOnce sync.Once
	defaultVal  *CustomValidator
)

// Default returns a process-wide validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func Default() *CustomValidator {
	defaultOnce.Do(func() { defaultVal = NewValidator() })
	return defaultVal
}

// Validate runs the `validate` struct tags of i.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Check reports whether value satisfies tag. An empty tag accepts anything.
func (cv *CustomValidator) Check(value, tag string) bool {
	if tag == "" {
		return true
	}
	return cv.validator.Var(value, tag) == nil
}

// InvalidFields lists the failing field names of a Validate error in struct
// declaration order, each name at most once.
func (cv *CustomValidator) InvalidFields(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(validationErrors))
	var fields []string
	for _, e := range validationErrors {
		if seen[e.Field()] {
			continue
		}
		seen[e.Field()] = true
		fields = append(fields, e.Field())
	}
	return fields
}

// FormatValidationErrors maps each failing field of a Validate error to a
// readable message. Only the first failing rule of a field is reported.
func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			if _, seen := errors[e.Field()]; seen {
				continue
			}
			errors[e.Field()] = Message(e.Field(), e.Tag())
		}
	}

	return errors
}

// Message describes a value of field that failed tag.
func Message(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case TagPersonName:
		return field + " must contain letters only"
	case TagPhone:
		return field + " must be exactly 10 digits"
	case TagEmail:
		return field + " must be a valid email address"
	case TagISODate:
		return field + " must be formatted YYYY-MM-DD"
	case TagVital:
		return field + " must be 1 to 3 digits"
	default:
		return field + " is invalid"
	}
}
