package apierr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Entity: "patient", Fields: []string{"firstName", "email"}}

	if !strings.Contains(err.Error(), "firstName, email") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
	want := "Please check the following fields:\nfirstName\nemail"
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}
	if !IsValidation(fmt.Errorf("create: %w", err)) {
		t.Error("expected wrapped validation error to be detected")
	}
	if IsRemote(err) {
		t.Error("validation error must not be remote")
	}
}

func TestValidationError_Missing(t *testing.T) {
	err := &ValidationError{Entity: "patient", Fields: []string{"lastName", "email"}, Missing: true}

	if !strings.HasPrefix(err.Error(), "incomplete patient") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
	want := "Please fill in the following fields:\nlastName\nemail"
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage = %q, want %q", got, want)
	}
	if !IsValidation(err) {
		t.Error("expected missing fields to be a validation error")
	}
}

func TestRemoteError_StatusAndTransport(t *testing.T) {
	withStatus := &RemoteError{Op: "update patient details", Method: "PUT", Path: "/patients/1", StatusCode: 500}
	if !strings.Contains(withStatus.Error(), "status 500") {
		t.Errorf("unexpected error text: %q", withStatus.Error())
	}

	cause := errors.New("connection refused")
	transport := &RemoteError{Op: "fetch patient data", Method: "GET", Path: "/patients", Err: cause}
	if !errors.Is(transport, cause) {
		t.Error("expected Unwrap to expose the transport cause")
	}
	if got := UserMessage(transport); got != "Failed to fetch patient data. Please try again." {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestAsNotFound(t *testing.T) {
	err := AsNotFound(&RemoteError{Op: "fetch patient data", Method: "GET", Path: "/patients/x", StatusCode: 404})
	wrapped := fmt.Errorf("get patient: %w", err)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected ErrNotFound to match")
	}
	if !IsRemote(wrapped) {
		t.Error("not-found must still be a remote error")
	}
	if got := UserMessage(wrapped); got != "Failed to fetch patient data. Please try again." {
		t.Errorf("not-found messaging changed: %q", got)
	}
}

func TestAsNotFound_TransportFailureStaysRemote(t *testing.T) {
	err := AsNotFound(&RemoteError{Op: "fetch patient data", Err: errors.New("dial tcp: timeout")})
	if errors.Is(err, ErrNotFound) {
		t.Error("transport failure must not be reported as not found")
	}
}

func TestUserMessage_Fallbacks(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Error("expected empty message for nil")
	}
	if got := UserMessage(errors.New("boom")); got != "Something went wrong. Please try again." {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestRemoteError_DecodeFailureOnSuccess(t *testing.T) {
	err := &RemoteError{Op: "fetch patient data", Method: "GET", Path: "/patients/1", StatusCode: 200, Err: errors.New("unexpected EOF")}
	if !strings.Contains(err.Error(), "status 200: unexpected EOF") {
		t.Errorf("unexpected error text: %q", err.Error())
	}
	if errors.Is(AsNotFound(err), ErrNotFound) {
		t.Error("a 2xx decode failure is not a not-found")
	}
}
