// Package middleware provides http.RoundTripper decorators applied to every
// request the records client sends: request ids, request logging and
// optional throttling.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const RequestIDHeader = "X-Request-ID"

// Middleware decorates a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base so that mws[0] runs first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

type requestIDKey struct{}

// WithRequestID pins the request id used for requests made with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id pinned on ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID sets X-Request-ID on outgoing requests. An id already on the
// request wins, then one pinned on the context, else a new UUID.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			rid := RequestIDFrom(req.Context())
			if rid == "" {
				rid = uuid.New().String()
			}
			// RoundTrippers must not modify the caller's request.
			req = req.Clone(req.Context())
			req.Header.Set(RequestIDHeader, rid)
			return next.RoundTrip(req)
		})
	}
}

// Logger emits one log line per request with its outcome and latency.
func Logger(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(req)

			evt := logger.Info()
			status := 0
			if err != nil {
				evt = logger.Error().Err(err)
			} else {
				status = resp.StatusCode
				if status < 200 || status >= 300 {
					evt = logger.Warn()
				}
			}

			evt.
				Str("request_id", req.Header.Get(RequestIDHeader)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("request")

			return resp, err
		})
	}
}
