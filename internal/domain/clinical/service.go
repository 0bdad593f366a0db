package clinical

import (
	"context"
	"strings"

	"github.com/clinic/records/internal/platform/apierr"
)

type Service struct {
	readings Repository
	rule     CriticalRule
}

// NewService builds a Service that classifies readings with rule. A nil rule
// trusts the API's flag.
func NewService(readings Repository, rule CriticalRule) *Service {
	if rule == nil {
		rule = RemoteFlag{}
	}
	return &Service{readings: readings, rule: rule}
}

func (s *Service) Rule() CriticalRule { return s.rule }

// ListReadings returns the patient's readings in the order the API sends them.
func (s *Service) ListReadings(ctx context.Context, patientID string) ([]*Reading, error) {
	if err := requirePatient(patientID); err != nil {
		return nil, err
	}
	return s.readings.ListByPatient(ctx, patientID)
}

// AddReading records a new reading. Invalid readings are rejected without a
// request.
func (s *Service) AddReading(ctx context.Context, patientID string, r *Reading) (*Reading, error) {
	if err := requirePatient(patientID); err != nil {
		return nil, err
	}
	if r == nil {
		r = &Reading{}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.readings.Create(ctx, patientID, r)
}

// Classify applies the configured rule to one reading.
func (s *Service) Classify(r *Reading) bool {
	return s.rule.IsCritical(r)
}

// CriticalReadings filters readings with the configured rule.
func (s *Service) CriticalReadings(readings []*Reading) []*Reading {
	return Critical(readings, s.rule)
}

// PatientCritical reports whether the patient's latest reading is critical.
func (s *Service) PatientCritical(readings []*Reading) bool {
	return LatestCritical(readings, s.rule)
}

func requirePatient(id string) error {
	if strings.TrimSpace(id) == "" {
		return &apierr.ValidationError{Entity: "clinical reading", Fields: []string{"patient_id"}}
	}
	return nil
}
