package clinical

import (
	"context"
)

// Repository is the remote store of clinical readings, scoped by patient.
type Repository interface {
	ListByPatient(ctx context.Context, patientID string) ([]*Reading, error)
	Create(ctx context.Context, patientID string, r *Reading) (*Reading, error)
}
