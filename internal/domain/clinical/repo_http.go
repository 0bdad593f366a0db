package clinical

import (
	"context"
	"errors"
	"net/http"

	"github.com/clinic/records/internal/platform/restclient"
)

const recordType = "reading"

const (
	opFetch = "fetch clinical data"
	opSave  = "save clinical data"
)

// HTTPRepository implements Repository against
//
//	GET  /patients/{id}/clinicaldata
//	POST /patients/{id}/clinicaldata
type HTTPRepository struct {
	client *restclient.Client
}

func NewHTTPRepository(client *restclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

// newReading is the create payload. The API assigns the id, patient link,
// critical flag and timestamps.
type newReading struct {
	BPSystolic       string `json:"bp_systolic"`
	BPDiastolic      string `json:"bp_diastolic"`
	RespiratoryRate  string `json:"respiratory_rate"`
	BloodOxygenLevel string `json:"blood_oxygen_level"`
	PulseRate        string `json:"pulse_rate"`
	ClinicStaff      string `json:"clinic_staff"`
}

func (r *HTTPRepository) ListByPatient(ctx context.Context, patientID string) ([]*Reading, error) {
	var out []*Reading
	_, err := r.client.Do(ctx, restclient.Request{
		Op:         opFetch,
		Method:     http.MethodGet,
		Segments:   []string{"patients", patientID, "clinicaldata"},
		RecordType: recordType,
	}, &out)
	if err != nil && !errors.Is(err, restclient.ErrEmptyBody) {
		return nil, err
	}
	// The API's arrays may contain nulls; callers never see nil readings.
	readings := make([]*Reading, 0, len(out))
	for _, r := range out {
		if r != nil {
			readings = append(readings, r)
		}
	}
	return readings, nil
}

func (r *HTTPRepository) Create(ctx context.Context, patientID string, in *Reading) (*Reading, error) {
	body := newReading{
		BPSystolic:       in.BPSystolic,
		BPDiastolic:      in.BPDiastolic,
		RespiratoryRate:  in.RespiratoryRate,
		BloodOxygenLevel: in.BloodOxygenLevel,
		PulseRate:        in.PulseRate,
		ClinicStaff:      in.ClinicStaff,
	}

	var saved Reading
	_, err := r.client.Do(ctx, restclient.Request{
		Op:         opSave,
		Method:     http.MethodPost,
		Segments:   []string{"patients", patientID, "clinicaldata"},
		Body:       body,
		RecordType: recordType,
	}, &saved)
	switch {
	case errors.Is(err, restclient.ErrEmptyBody):
		// Nothing to decode; hand back what was sent.
		saved = *in
	case err != nil:
		return nil, err
	}
	if saved.PatientID == "" {
		saved.PatientID = patientID
	}
	return &saved, nil
}
