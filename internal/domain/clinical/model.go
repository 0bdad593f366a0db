package clinical

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/clinic/records/internal/platform/wire"
)

// Reading is one set of vital signs recorded for a patient. Readings are
// created and listed, never edited or deleted.
type Reading struct {
	ID        string `json:"_id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`

	BPSystolic       string `json:"bp_systolic" validate:"required,vital"`
	BPDiastolic      string `json:"bp_diastolic" validate:"required,vital"`
	RespiratoryRate  string `json:"respiratory_rate" validate:"required,vital"`
	BloodOxygenLevel string `json:"blood_oxygen_level" validate:"required,vital"`
	PulseRate        string `json:"pulse_rate" validate:"required,vital"`
	ClinicStaff      string `json:"clinic_staff" validate:"required"`

	// IsCriticalCondition is set by the API when the reading is stored.
	IsCriticalCondition bool      `json:"is_critical_condition"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts vitals sent back as JSON numbers.
func (r *Reading) UnmarshalJSON(data []byte) error {
	type alias Reading
	*r = Reading{}
	aux := struct {
		*alias
		BPSystolic       json.RawMessage `json:"bp_systolic"`
		BPDiastolic      json.RawMessage `json:"bp_diastolic"`
		RespiratoryRate  json.RawMessage `json:"respiratory_rate"`
		BloodOxygenLevel json.RawMessage `json:"blood_oxygen_level"`
		PulseRate        json.RawMessage `json:"pulse_rate"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for _, v := range []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"bp_systolic", aux.BPSystolic, &r.BPSystolic},
		{"bp_diastolic", aux.BPDiastolic, &r.BPDiastolic},
		{"respiratory_rate", aux.RespiratoryRate, &r.RespiratoryRate},
		{"blood_oxygen_level", aux.BloodOxygenLevel, &r.BloodOxygenLevel},
		{"pulse_rate", aux.PulseRate, &r.PulseRate},
	} {
		s, err := wire.ScalarString(v.raw)
		if err != nil {
			return fmt.Errorf("reading field %s: %w", v.name, err)
		}
		*v.dst = s
	}
	return nil
}

// Vital names one of the five measured values.
type Vital string

const (
	VitalBPSystolic       Vital = "bp_systolic"
	VitalBPDiastolic      Vital = "bp_diastolic"
	VitalRespiratoryRate  Vital = "respiratory_rate"
	VitalBloodOxygenLevel Vital = "blood_oxygen_level"
	VitalPulseRate        Vital = "pulse_rate"
)

// Vitals returns the measured values in form order.
func Vitals() []Vital {
	return []Vital{VitalBPSystolic, VitalBPDiastolic, VitalRespiratoryRate, VitalBloodOxygenLevel, VitalPulseRate}
}

// Value returns the recorded text of v, or "" for an unknown vital.
func (r *Reading) Value(v Vital) string {
	switch v {
	case VitalBPSystolic:
		return r.BPSystolic
	case VitalBPDiastolic:
		return r.BPDiastolic
	case VitalRespiratoryRate:
		return r.RespiratoryRate
	case VitalBloodOxygenLevel:
		return r.BloodOxygenLevel
	case VitalPulseRate:
		return r.PulseRate
	}
	return ""
}

// Time is the moment the reading was last written, falling back to its
// creation time.
func (r *Reading) Time() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
