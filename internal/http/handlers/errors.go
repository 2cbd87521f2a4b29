// Package handlers defines the HTTP error codes returned by every endpoint.
//
// Clients branch on Code; Message is for humans. Generic codes mirror the
// HTTP status, the rest name a failure the status alone cannot convey.
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_path",
//	  "message": "invalid document path"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTimeout          = "timeout"

	// Document routes.
	ErrCodeInvalidPath   = "invalid_path"
	ErrCodeBadConstraint = "bad_constraint"
	ErrCodeReadOnly      = "read_only"

	// State routes.
	ErrCodeInvalidReaction = "invalid_reaction"
	ErrCodeInvalidToast    = "invalid_toast"
)
