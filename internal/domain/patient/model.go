package patient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/clinic/records/internal/platform/wire"
)

// Patient is the clinic's patient record. Every field is a required string at
// creation time; ID is assigned by the API.
type Patient struct {
	ID string `json:"_id,omitempty"`

	// Personal information
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	DateOfBirth        string `json:"dateOfBirth"`
	Age                string `json:"age"`
	Gender             string `json:"gender"`
	Height             string `json:"height"`
	Weight             string `json:"weight"`
	Address            string `json:"address"`
	City               string `json:"city"`
	Province           string `json:"province"`
	PostalCode         string `json:"postalCode"`
	ContactNumber      string `json:"contactNumber"`
	Email              string `json:"email"`
	Identification     string `json:"identification"`
	IdentificationType string `json:"identificationType"`

	// Medical information
	PurposeOfVisit         string `json:"purposeOfVisit"`
	PrimaryCarePhysician   string `json:"primaryCarePhysician"`
	PhysicianContactNumber string `json:"physicianContactNumber"`
	ListOfAllergies        string `json:"listOfAllergies"`
	CurrentMedications     string `json:"currentMedications"`
	MedicalConditions      string `json:"medicalConditions"`

	// Insurance information
	InsuranceProvider      string `json:"insuranceProvider"`
	InsuranceIDNumber      string `json:"insuranceIdNumber"`
	InsuranceContactNumber string `json:"insuranceContactNumber"`

	// Emergency contact
	EmergencyContactPerson string `json:"emergencyContactPerson"`
	EmergencyContactNumber string `json:"emergencyContactNumber"`

	// ETag is the entity tag returned with the record, if the API sends one.
	ETag string `json:"-"`
}

// Group is a section of the patient form.
type Group string

const (
	GroupPersonal  Group = "Personal Information"
	GroupMedical   Group = "Medical Information"
	GroupInsurance Group = "Insurance Information"
	GroupEmergency Group = "Emergency Contact"
)

// Groups returns the form sections in display order.
func Groups() []Group {
	return []Group{GroupPersonal, GroupMedical, GroupInsurance, GroupEmergency}
}

// Field describes one patient attribute.
type Field struct {
	Name     string
	Label    string
	Group    Group
	Category Category
}

type fieldDef struct {
	Field
	ref func(*Patient) *string
}

// schema is the single source of field order, grouping and classification.
var schema = []fieldDef{
	{Field{"firstName", "First Name", GroupPersonal, CategoryName}, func(p *Patient) *string { return &p.FirstName }},
	{Field{"lastName", "Last Name", GroupPersonal, CategoryName}, func(p *Patient) *string { return &p.LastName }},
	{Field{"dateOfBirth", "Date of Birth", GroupPersonal, CategoryDateOfBirth}, func(p *Patient) *string { return &p.DateOfBirth }},
	{Field{"age", "Age", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.Age }},
	{Field{"gender", "Gender", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.Gender }},
	{Field{"height", "Height (cm)", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.Height }},
	{Field{"weight", "Weight (kg)", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.Weight }},
	{Field{"address", "Address", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.Address }},
	{Field{"city", "City", GroupPersonal, CategoryName}, func(p *Patient) *string { return &p.City }},
	{Field{"province", "Province", GroupPersonal, CategoryName}, func(p *Patient) *string { return &p.Province }},
	{Field{"postalCode", "Postal Code", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.PostalCode }},
	{Field{"contactNumber", "Contact Number", GroupPersonal, CategoryPhone}, func(p *Patient) *string { return &p.ContactNumber }},
	{Field{"email", "Email", GroupPersonal, CategoryEmail}, func(p *Patient) *string { return &p.Email }},
	{Field{"identification", "Identification #", GroupPersonal, CategoryFreeText}, func(p *Patient) *string { return &p.Identification }},
	{Field{"identificationType", "Identification Type", GroupPersonal, CategoryName}, func(p *Patient) *string { return &p.IdentificationType }},

	{Field{"purposeOfVisit", "Purpose of Visit", GroupMedical, CategoryName}, func(p *Patient) *string { return &p.PurposeOfVisit }},
	{Field{"primaryCarePhysician", "Primary Care Physician", GroupMedical, CategoryName}, func(p *Patient) *string { return &p.PrimaryCarePhysician }},
	{Field{"physicianContactNumber", "Physician Contact Number", GroupMedical, CategoryPhone}, func(p *Patient) *string { return &p.PhysicianContactNumber }},
	{Field{"listOfAllergies", "List of Allergies", GroupMedical, CategoryName}, func(p *Patient) *string { return &p.ListOfAllergies }},
	{Field{"currentMedications", "Current Medications", GroupMedical, CategoryName}, func(p *Patient) *string { return &p.CurrentMedications }},
	{Field{"medicalConditions", "Medical Conditions", GroupMedical, CategoryFreeText}, func(p *Patient) *string { return &p.MedicalConditions }},

	{Field{"insuranceProvider", "Insurance Provider", GroupInsurance, CategoryFreeText}, func(p *Patient) *string { return &p.InsuranceProvider }},
	{Field{"insuranceIdNumber", "Insurance ID Number", GroupInsurance, CategoryFreeText}, func(p *Patient) *string { return &p.InsuranceIDNumber }},
	{Field{"insuranceContactNumber", "Insurance Contact Number", GroupInsurance, CategoryPhone}, func(p *Patient) *string { return &p.InsuranceContactNumber }},

	{Field{"emergencyContactPerson", "Emergency Contact Person", GroupEmergency, CategoryName}, func(p *Patient) *string { return &p.EmergencyContactPerson }},
	{Field{"emergencyContactNumber", "Emergency Contact Number", GroupEmergency, CategoryPhone}, func(p *Patient) *string { return &p.EmergencyContactNumber }},
}

var schemaIndex = func() map[string]int {
	idx := make(map[string]int, len(schema))
	for i, f := range schema {
		idx[f.Name] = i
	}
	return idx
}()

// Fields returns every patient field in form order.
func Fields() []Field {
	out := make([]Field, len(schema))
	for i, f := range schema {
		out[i] = f.Field
	}
	return out
}

// FieldsIn returns the fields of one form section, in order.
func FieldsIn(g Group) []Field {
	var out []Field
	for _, f := range schema {
		if f.Group == g {
			out = append(out, f.Field)
		}
	}
	return out
}

// LookupField returns the schema entry for name.
func LookupField(name string) (Field, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return Field{}, false
	}
	return schema[i].Field, true
}

// Value returns the value of the named field, or "" for an unknown name.
func (p *Patient) Value(name string) string {
	i, ok := schemaIndex[name]
	if !ok {
		return ""
	}
	return *schema[i].ref(p)
}

// Set assigns the named field.
func (p *Patient) Set(name, value string) error {
	i, ok := schemaIndex[name]
	if !ok {
		return fmt.Errorf("unknown patient field %q", name)
	}
	*schema[i].ref(p) = value
	return nil
}

// Clone returns a copy of p.
func (p *Patient) Clone() *Patient {
	c := *p
	return &c
}

// FullName joins the first and last names for display.
func (p *Patient) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// UnmarshalJSON accepts numeric age/height/weight and a timestamp date of
// birth, both of which the API may return for values posted as strings.
func (p *Patient) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Patient{}
	idRaw, ok := raw["_id"]
	if !ok {
		idRaw = raw["id"]
	}
	id, err := wire.ScalarString(idRaw)
	if err != nil {
		return fmt.Errorf("patient field _id: %w", err)
	}
	p.ID = id

	for _, f := range schema {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		s, err := wire.ScalarString(v)
		if err != nil {
			return fmt.Errorf("patient field %s: %w", f.Name, err)
		}
		*f.ref(p) = s
	}
	p.DateOfBirth = NormalizeDateOfBirth(p.DateOfBirth)
	return nil
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeDateOfBirth reduces an RFC 3339 timestamp to YYYY-MM-DD. Any other
// value is returned unchanged for validation to judge.
func NormalizeDateOfBirth(v string) string {
	if v == "" || isoDatePrefix.MatchString(v) {
		return v
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.Format("2006-01-02")
	}
	return v
}
