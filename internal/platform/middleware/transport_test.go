package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func captureRequestID(t *testing.T) (http.RoundTripper, *string) {
	t.Helper()
	var seen string
	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get(RequestIDHeader)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})
	return base, &seen
}

func TestRequestID_GeneratesNew(t *testing.T) {
	base, seen := captureRequestID(t)
	rt := Chain(base, RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://api.test/patients", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *seen == "" {
		t.Error("expected X-Request-ID to be generated")
	}
	if req.Header.Get(RequestIDHeader) != "" {
		t.Error("caller's request must not be modified")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	base, seen := captureRequestID(t)
	rt := Chain(base, RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://api.test/patients", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rt.RoundTrip(req)

	if *seen != "my-custom-id" {
		t.Errorf("expected my-custom-id, got %s", *seen)
	}
}

func TestRequestID_UsesContextValue(t *testing.T) {
	base, seen := captureRequestID(t)
	rt := Chain(base, RequestID())

	ctx := WithRequestID(context.Background(), "cli-run-1")
	req := httptest.NewRequest(http.MethodGet, "http://api.test/patients", nil).WithContext(ctx)
	rt.RoundTrip(req)

	if *seen != "cli-run-1" {
		t.Errorf("expected cli-run-1, got %s", *seen)
	}
	if RequestIDFrom(context.Background()) != "" {
		t.Error("expected empty id on a bare context")
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody, Request: req}, nil
	})
	rt := Chain(base, RequestID(), Logger(logger))

	req := httptest.NewRequest(http.MethodGet, "http://api.test/patients/42", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["level"] != "warn" {
		t.Errorf("expected warn level for 404, got %v", line["level"])
	}
	if line["path"] != "/patients/42" {
		t.Errorf("path = %v", line["path"])
	}
	if line["status"] != float64(404) {
		t.Errorf("status = %v", line["status"])
	}
	if line["request_id"] == "" {
		t.Error("expected request_id in log line")
	}
}

func TestLogger_TransportError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	base := RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	rt := Chain(base, Logger(logger))

	req := httptest.NewRequest(http.MethodGet, "http://api.test/patients", nil)
	if _, err := rt.RoundTrip(req); err == nil {
		t.Fatal("expected transport error to pass through")
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("expected error level, got %s", buf.String())
	}
}
