// Package apierr defines the error kinds surfaced by the records client:
// local validation failures, remote (transport or non-2xx) failures, and
// not-found lookups. Every repository operation returns one of these so the
// presentation layer can render a notice without inspecting HTTP details.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is matched by errors.Is when a by-id read did not succeed.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a record that failed local validation. It is
// returned before any request is sent.
type ValidationError struct {
	Entity string
	Fields []string
	// Missing marks a record rejected only because Fields are empty, before
	// any format rule ran.
	Missing bool
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("incomplete %s: %s", e.Entity, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(e.Fields, ", "))
}

// RemoteError reports a request that did not complete with a 2xx status.
// StatusCode is 0 when no response was received.
type RemoteError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Err        error

	notFound bool
}

func (e *RemoteError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s %s: status %d: %v", e.Op, e.Method, e.Path, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s: %s %s: status %d", e.Op, e.Method, e.Path, e.StatusCode)
	}
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match a remote error marked by AsNotFound.
func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.notFound
}

// AsNotFound marks a non-success response to a by-id read. Transport failures
// and undecodable 2xx bodies stay plain remote errors.
func AsNotFound(err error) error {
	var re *RemoteError
	if errors.As(err, &re) && re.StatusCode >= 300 {
		re.notFound = true
	}
	return err
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err carries a *RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// UserMessage renders the notice shown for err: the offending field names
// for a validation failure, otherwise a generic retry message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Missing {
			return "Please fill in the following fields:\n" + strings.Join(ve.Fields, "\n")
		}
		return "Please check the following fields:\n" + strings.Join(ve.Fields, "\n")
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Op != "" {
		return fmt.Sprintf("Failed to %s. Please try again.", re.Op)
	}
	return "Something went wrong. Please try again."
}
