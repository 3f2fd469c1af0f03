// Package domain defines domain-level errors for the prices feature.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed indicates the upstream API returned a non-success status or a malformed payload.
	// It is recovered per (security, date) and never aborts a run.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseFailed indicates a date or numeric field of an upstream row could not be converted.
	ErrParseFailed = errors.New("parse failed")

	// ErrWriteFailed indicates the warehouse insert failed. The whole batch is considered unwritten.
	ErrWriteFailed = errors.New("write failed")

	// ErrConfigurationFailed indicates the warehouse client or its storage could not be initialized.
	// Runs cannot proceed without it.
	ErrConfigurationFailed = errors.New("configuration failed")

	// ErrInvalidRecord indicates a record carries values that cannot be written safely.
	ErrInvalidRecord = errors.New("invalid record")
)

// StatusError carries the provider's status for a rejected request.
// Stat is the API "stat" field; HTTPStatus is set when the transport itself failed.
type StatusError struct {
	Stat       string
	HTTPStatus int
}

func (e *StatusError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("provider http %d", e.HTTPStatus)
	}
	return fmt.Sprintf("provider status %q", e.Stat)
}

// Unwrap lets callers match a StatusError with errors.Is(err, ErrFetchFailed).
func (e *StatusError) Unwrap() error {
	return ErrFetchFailed
}
