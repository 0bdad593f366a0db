package patient

import (
	"context"
)

// Repository is the remote store of patient records. Implementations return
// *apierr.RemoteError for any failed exchange and never mutate their inputs.
type Repository interface {
	List(ctx context.Context) ([]*Patient, error)
	ListCritical(ctx context.Context) ([]*Patient, error)
	Get(ctx context.Context, id string) (*Patient, error)
	Create(ctx context.Context, p *Patient) (*Patient, error)
	Update(ctx context.Context, id string, p *Patient) (*Patient, error)
	// Delete removes the record. A non-empty etag is sent as If-Match.
	Delete(ctx context.Context, id, etag string) error
}
