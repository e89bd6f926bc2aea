// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, machine-readable strings that supplement the HTTP
// status. Clients are expected to branch on them rather than on messages.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain codes are reserved for registry rules that the status alone
//     cannot convey.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "bad_request",
//	  "message": "validation failed",
//	  "fields": {"event_id": "is required"}
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvariant        = "invariant_violation"
	ErrCodeInvalidReference = "invalid_reference"
	ErrCodeSeedInProgress   = "seed_in_progress"
)
