package backend

import (
	"fmt"

	"github.com/go-faster/errors"
)

// The gateway maps every failure mode of a backend call onto one of three
// error kinds so callers can react without inspecting transport details:
//
//   - UnavailableError: the backend could not be reached at all
//     (connection refused, DNS failure, client timeout).
//   - RejectedError: the backend answered with a non-2xx status. The
//     message carries the backend's structured error when present.
//   - FormatError: the backend answered 2xx but the payload does not match
//     the expected shape.
//
// Validation of local input happens in the domain layer before any of these
// can occur; no gateway call is retried automatically.

// UnavailableError indicates a connectivity failure: the request never
// produced an HTTP response.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// RejectedError indicates the backend refused the request with a non-2xx
// response. Message is extracted from the JSON error body when present,
// otherwise it summarizes the raw status and body.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.StatusCode, e.Message)
}

// FormatError indicates a 2xx response whose payload did not match the
// expected shape, e.g. a non-list menu or a non-object order.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected backend response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected backend response: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsRejected reports whether err is (or wraps) a RejectedError, returning it
// when so.
func IsRejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsFormat reports whether err is (or wraps) a FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
