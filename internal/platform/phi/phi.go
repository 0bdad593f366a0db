// Package phi lists the record fields that carry Protected Health Information
// and masks them before a payload is written to a log.
package phi

import (
	"encoding/json"
)

// Mask replaces every PHI value in a redacted payload.
const Mask = "[REDACTED]"

// FieldConfig maps a record type to the JSON fields that contain PHI.
type FieldConfig struct {
	// RecordType names the payload kind, e.g. "patient".
	RecordType string
	// Fields lists top-level JSON field names.
	Fields []string
}

// DefaultFields returns the PHI configuration for the records exchanged with
// the clinic API. Names stay readable so log lines can be correlated with a
// chart; contact details, identifiers and birth dates are masked.
func DefaultFields() []FieldConfig {
	return []FieldConfig{
		{
			RecordType: "patient",
			Fields: []string{
				"dateOfBirth",
				"address",
				"postalCode",
				"contactNumber",
				"email",
				"identification",
				"physicianContactNumber",
				"insuranceIdNumber",
				"insuranceContactNumber",
				"emergencyContactNumber",
			},
		},
		{
			RecordType: "reading",
			Fields: []string{
				"clinic_staff",
			},
		},
	}
}

// FieldPaths returns a flat set of "<recordType>.<field>" keys.
func FieldPaths() map[string]bool {
	configs := DefaultFields()
	paths := make(map[string]bool, 16)
	for _, c := range configs {
		for _, f := range c.Fields {
			paths[c.RecordType+"."+f] = true
		}
	}
	return paths
}

// RedactJSON masks the PHI fields of recordType in body, which may hold a
// single object or an array of objects. Bodies that are not JSON are dropped
// entirely; an empty body is returned unchanged.
func RedactJSON(recordType string, body []byte) []byte {
	if len(body) == 0 {
		return body
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return []byte(`"[unparseable body omitted]"`)
	}

	paths := FieldPaths()
	switch v := doc.(type) {
	case map[string]interface{}:
		redactObject(paths, recordType, v)
	case []interface{}:
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				redactObject(paths, recordType, obj)
			}
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return []byte(`"[unparseable body omitted]"`)
	}
	return out
}

func redactObject(paths map[string]bool, recordType string, obj map[string]interface{}) {
	for k := range obj {
		if paths[recordType+"."+k] {
			obj[k] = Mask
		}
	}
}
