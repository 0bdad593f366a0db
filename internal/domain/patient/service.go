package patient

import (
	"context"
	"strings"

	"github.com/clinic/records/internal/platform/apierr"
)

// Service applies the patient record rules in front of a Repository. Writes
// that fail validation are rejected before any request is made.
type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// ListCriticalPatients returns the patients the API currently flags as
// critical.
func (s *Service) ListCriticalPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.ListCritical(ctx)
}

// SearchPatients fetches the full list and narrows it by name locally.
func (s *Service) SearchPatients(ctx context.Context, query string) ([]*Patient, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByName(all, query), nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.patients.Get(ctx, id)
}

// CreatePatient stores a new record and returns it with its assigned id. A nil
// record fails validation like an empty one.
func (s *Service) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	if p == nil {
		p = &Patient{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.patients.Create(ctx, p)
}

// UpdatePatient replaces the stored record. Every field is re-validated, even
// the ones the caller did not change.
func (s *Service) UpdatePatient(ctx context.Context, id string, p *Patient) (*Patient, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	if p == nil {
		p = &Patient{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.patients.Update(ctx, id, p)
}

// DeletePatient removes the record. The API is responsible for deleting the
// patient's clinical readings.
func (s *Service) DeletePatient(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id, "")
}

// DeletePatientVersion removes p only if it is still the version the caller
// read; a stale ETag fails with a RemoteError. Without an ETag it behaves
// like DeletePatient.
func (s *Service) DeletePatientVersion(ctx context.Context, p *Patient) error {
	if p == nil {
		return requireID("")
	}
	if err := requireID(p.ID); err != nil {
		return err
	}
	return s.patients.Delete(ctx, p.ID, p.ETag)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &apierr.ValidationError{Entity: "patient", Fields: []string{"_id"}}
	}
	return nil
}
