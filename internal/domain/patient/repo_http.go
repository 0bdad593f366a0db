package patient

import (
	"context"
	"errors"
	"net/http"

	"github.com/clinic/records/internal/platform/apierr"
	"github.com/clinic/records/internal/platform/restclient"
)

const recordType = "patient"

// User-facing operation names, rendered as "Failed to <op>. Please try again."
const (
	opFetch    = "fetch patient data"
	opCritical = "fetch critical patients"
	opSave     = "save patient data"
	opUpdate   = "update patient details"
	opDelete   = "delete patient record"
)

// HTTPRepository implements Repository against the clinic REST API:
//
//	GET    /patients
//	GET    /patients/critical
//	GET    /patients/{id}
//	POST   /patients
//	PUT    /patients/{id}
//	DELETE /patients/{id}
type HTTPRepository struct {
	client *restclient.Client
}

func NewHTTPRepository(client *restclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) List(ctx context.Context) ([]*Patient, error) {
	return r.list(ctx, opFetch, "patients")
}

func (r *HTTPRepository) ListCritical(ctx context.Context) ([]*Patient, error) {
	return r.list(ctx, opCritical, "patients", "critical")
}

func (r *HTTPRepository) list(ctx context.Context, op string, segments ...string) ([]*Patient, error) {
	var out []*Patient
	_, err := r.client.Do(ctx, restclient.Request{
		Op:         op,
		Method:     http.MethodGet,
		Segments:   segments,
		RecordType: recordType,
	}, &out)
	if err != nil && !errors.Is(err, restclient.ErrEmptyBody) {
		return nil, err
	}
	return compactPatients(out), nil
}

// compactPatients drops null array elements. The result is never nil.
func compactPatients(in []*Patient) []*Patient {
	out := make([]*Patient, 0, len(in))
	for _, p := range in {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (r *HTTPRepository) Get(ctx context.Context, id string) (*Patient, error) {
	req := restclient.Request{
		Op:         opFetch,
		Method:     http.MethodGet,
		Segments:   []string{"patients", id},
		RecordType: recordType,
	}
	var p Patient
	resp, err := r.client.Do(ctx, req, &p)
	if errors.Is(err, restclient.ErrEmptyBody) {
		err = emptyBodyError(req, resp)
	}
	if err != nil {
		return nil, apierr.AsNotFound(err)
	}
	p.ETag = resp.Header.Get("ETag")
	return &p, nil
}

func (r *HTTPRepository) Create(ctx context.Context, p *Patient) (*Patient, error) {
	req := restclient.Request{
		Op:         opSave,
		Method:     http.MethodPost,
		Segments:   []string{"patients"},
		Body:       writeBody(p),
		RecordType: recordType,
	}
	var saved Patient
	resp, err := r.client.Do(ctx, req, &saved)
	if errors.Is(err, restclient.ErrEmptyBody) {
		// Without a body there is no assigned id to hand back.
		err = emptyBodyError(req, resp)
	}
	if err != nil {
		return nil, err
	}
	saved.ETag = resp.Header.Get("ETag")
	return &saved, nil
}

func (r *HTTPRepository) Update(ctx context.Context, id string, p *Patient) (*Patient, error) {
	req := restclient.Request{
		Op:         opUpdate,
		Method:     http.MethodPut,
		Segments:   []string{"patients", id},
		Body:       writeBody(p),
		Header:     ifMatch(p.ETag),
		RecordType: recordType,
	}

	var saved Patient
	resp, err := r.client.Do(ctx, req, &saved)
	switch {
	case errors.Is(err, restclient.ErrEmptyBody):
		// Some deployments answer a replace with 204; the submitted record
		// is then the stored one.
		saved = *p.Clone()
	case err != nil:
		return nil, err
	}
	if saved.ID == "" {
		saved.ID = id
	}
	saved.ETag = resp.Header.Get("ETag")
	return &saved, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, id, etag string) error {
	_, err := r.client.Do(ctx, restclient.Request{
		Op:         opDelete,
		Method:     http.MethodDelete,
		Segments:   []string{"patients", id},
		Header:     ifMatch(etag),
		RecordType: recordType,
	}, nil)
	return err
}

func ifMatch(etag string) http.Header {
	if etag == "" {
		return nil
	}
	return http.Header{"If-Match": []string{etag}}
}

// writeBody is the full record minus its id; the id travels in the path.
func writeBody(p *Patient) *Patient {
	body := p.Clone()
	body.ID = ""
	return body
}

func emptyBodyError(req restclient.Request, resp *restclient.Response) error {
	return &apierr.RemoteError{
		Op:         req.Op,
		Method:     req.Method,
		Path:       req.Path(),
		StatusCode: resp.StatusCode,
		Err:        restclient.ErrEmptyBody,
	}
}
