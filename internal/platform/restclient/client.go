// Package restclient is the JSON-over-HTTP transport shared by the record
// repositories. It sends one request per call, treats any 2xx status as
// success and converts everything else into an *apierr.RemoteError. It never
// retries.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/records/internal/platform/apierr"
	"github.com/clinic/records/internal/platform/middleware"
	"github.com/clinic/records/internal/platform/phi"
)

// maxErrorBody caps how much of a failed response body is kept for logging.
const maxErrorBody = 1024

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Its transport is used as-is, so
// callers that want request logging must chain the middleware themselves.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets the logger used for request and payload logging.
func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithTimeout bounds every request. Zero leaves deadlines to the caller's
// context.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithRateLimit throttles outgoing requests. A zero rate sends freely.
func WithRateLimit(cfg middleware.RateLimitConfig) Option {
	return func(cl *Client) { cl.rateLimit = cfg }
}

// Client talks to the clinic records API rooted at a base URL.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
	timeout    time.Duration
	rateLimit  middleware.RateLimitConfig
}

// New creates a Client for baseURL, which must be an absolute http(s) URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must use http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{
		baseURL: u,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		mws := []middleware.Middleware{
			middleware.RequestID(),
			middleware.Logger(c.logger),
		}
		if c.rateLimit.Enabled() {
			mws = append(mws, middleware.RateLimit(c.rateLimit.Limiter()))
		}
		c.httpClient = &http.Client{
			Transport: middleware.Chain(http.DefaultTransport, mws...),
		}
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request describes one call against the API.
type Request struct {
	// Op is the user-facing action, e.g. "save patient data".
	Op     string
	Method string
	// Segments are path segments below the base URL; each is escaped.
	Segments []string
	Body     interface{}
	Header   http.Header
	// RecordType selects the PHI mask applied to logged payloads.
	RecordType string
}

// Path renders the escaped request path below the base URL.
func (r Request) Path() string {
	escaped := make([]string, len(r.Segments))
	for i, s := range r.Segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// Response carries the metadata of a successful call.
type Response struct {
	StatusCode int
	Header     http.Header
}

// Do sends r and, on a 2xx status with a non-empty body, decodes the body into
// out (when out is non-nil).
func (c *Client) Do(ctx context.Context, r Request, out interface{}) (*Response, error) {
	path := r.Path()
	remote := func(status int, err error) error {
		return &apierr.RemoteError{Op: r.Op, Method: r.Method, Path: path, StatusCode: status, Err: err}
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", r.Method, err)
		}
		if evt := c.logger.Debug(); evt.Enabled() {
			evt.Str("method", r.Method).
				Str("path", path).
				RawJSON("body", redacted(r.RecordType, payload)).
				Msg("request payload")
		}
		body = bytes.NewReader(payload)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, remote(0, err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, remote(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if evt := c.logger.Debug(); evt.Enabled() {
			evt.Str("method", r.Method).
				Str("path", path).
				Int("status", resp.StatusCode).
				RawJSON("body", redacted(r.RecordType, snippet)).
				Msg("non-2xx response")
		}
		return nil, remote(resp.StatusCode, nil)
	}

	meta := &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone()}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return meta, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, remote(resp.StatusCode, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return meta, ErrEmptyBody
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, remote(resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return meta, nil
}

func redacted(recordType string, body []byte) []byte {
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("null")
	}
	return phi.RedactJSON(recordType, body)
}

// ErrEmptyBody is returned alongside a non-nil Response when a 2xx reply had
// no body to decode. Callers decide whether that is acceptable.
var ErrEmptyBody = errors.New("empty response body")
