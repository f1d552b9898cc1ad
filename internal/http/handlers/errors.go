// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants give clients a stable, machine-readable taxonomy
// alongside the HTTP status. Handlers pick the most specific matching code
// and pass it to fail().
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeUpdateFailed     = "update_failed"
	ErrCodeInvalidStatus    = "invalid_status"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
