// Package services defines the business logic for support requests and their
// conversation threads. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Request-related errors.
var (
	// ErrRequestNotFound indicates that the requested ticket does not exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrEmptyIssue is returned when a ticket is created with a blank
	// issue description.
	ErrEmptyIssue = errors.New("issue is empty")

	// ErrEmptyMessage is returned when an appended message has no body.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when an issue or message exceeds the maximum
	// configured length limit.
	ErrTooLong = errors.New("text too long")

	// ErrAlreadyAssigned is returned when an admin tries to claim a ticket
	// that already has an assigned admin (including themselves).
	ErrAlreadyAssigned = errors.New("request already assigned")

	// ErrInvalidStatus is returned when a status value cannot be mapped to
	// the canonical enum.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidSenderType is returned when a message carries an unknown
	// sender type.
	ErrInvalidSenderType = errors.New("invalid sender type")

	// ErrEmptySolution is returned when a ticket is resolved without any
	// resolution text.
	ErrEmptySolution = errors.New("solution is empty")
)
