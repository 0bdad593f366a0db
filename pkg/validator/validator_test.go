package validator

import (
	"reflect"
	"testing"
)

func TestCheck_Rules(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		tag   string
		value string
		want  bool
	}{
		{TagPersonName, "John", true},
		{TagPersonName, "John123", false},
		{TagPersonName, "Mary Ann", false},
		{TagPersonName, "O-Neil", false},
		{TagPersonName, "", false},
		{TagPhone, "4165551234", true},
		{TagPhone, "555-1234", false},
		{TagPhone, "41655512345", false},
		{TagEmail, "a@b.com", true},
		{TagEmail, "a@b", false},
		{TagEmail, "a b@c.com", false},
		{TagEmail, "a\vb@c.com", false},
		{TagEmail, "a\u00a0b@c.com", false},
		{TagEmail, "a@b\u2003c.com", false},
		{TagEmail, "a@b.c\u3000om", false},
		{TagEmail, "\ufeffa@b.com", false},
		{TagEmail, "a@b.com\u2028", false},
		{TagEmail, "a\u2029@b.com", false},
		{TagEmail, "jos\u00e9@b.com", true},
		{TagISODate, "1990-01-01", true},
		{TagISODate, "1990-13-45", true},
		{TagISODate, "01/01/1990", false},
		{TagVital, "7", true},
		{TagVital, "120", true},
		{TagVital, "1200", false},
		{TagVital, "12a", false},
		{TagVital, "", false},
		{"", "", true},
		{"", "anything", true},
	}

	for _, tt := range tests {
		if got := v.Check(tt.value, tt.tag); got != tt.want {
			t.Errorf("Check(%q, %q) = %v, want %v", tt.value, tt.tag, got, tt.want)
		}
	}
}

type sample struct {
	Staff    string `json:"clinic_staff" validate:"required"`
	Systolic string `json:"bp_systolic" validate:"required,vital"`
	Pulse    string `json:"pulse_rate" validate:"required,vital"`
	Ignored  string `json:"-"`
}

func TestValidate_InvalidFieldsUseJSONNamesInOrder(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{Staff: "", Systolic: "1200", Pulse: "abc"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	got := v.InvalidFields(err)
	want := []string{"clinic_staff", "bp_systolic", "pulse_rate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InvalidFields = %v, want %v", got, want)
	}

	msgs := v.FormatValidationErrors(err)
	if msgs["bp_systolic"] != "bp_systolic must be 1 to 3 digits" {
		t.Errorf("unexpected message: %q", msgs["bp_systolic"])
	}
	if msgs["clinic_staff"] != "clinic_staff is required" {
		t.Errorf("unexpected message: %q", msgs["clinic_staff"])
	}
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&sample{Staff: "Nurse", Systolic: "120", Pulse: "72"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields := v.InvalidFields(nil); fields != nil {
		t.Errorf("expected nil fields for nil error, got %v", fields)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{Staff: "", Systolic: "1200", Pulse: ""})
	got := v.FormatValidationErrors(err)
	want := map[string]string{
		"clinic_staff": "clinic_staff is required",
		"bp_systolic":  "bp_systolic must be 1 to 3 digits",
		"pulse_rate":   "pulse_rate is required",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatValidationErrors = %v, want %v", got, want)
	}
	if got := v.FormatValidationErrors(nil); len(got) != 0 {
		t.Errorf("expected no messages for nil error, got %v", got)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"required", "email is required"},
		{TagEmail, "email must be a valid email address"},
		{TagPhone, "email must be exactly 10 digits"},
		{TagISODate, "email must be formatted YYYY-MM-DD"},
		{"unknown", "email is invalid"},
	}
	for _, tt := range tests {
		if got := Message("email", tt.tag); got != tt.want {
			t.Errorf("Message(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestDefault_IsShared(t *testing.T) {
	if Default() != Default() {
		t.Error("expected Default to return the same instance")
	}
}
