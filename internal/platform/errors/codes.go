// Package errors provides structured error handling for governance operations.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Governance rejections
	CodeNotAuthorized      Code = "NOT_AUTHORIZED"
	CodeSessionBusy        Code = "SESSION_BUSY"
	CodeNoSessionPending   Code = "NO_SESSION_PENDING"
	CodeAlreadyVoted       Code = "ALREADY_VOTED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// Transport/identity errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeGrantInvalid    Code = "GRANT_INVALID"
	CodeGrantExpired    Code = "GRANT_EXPIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeInternal Code = "INTERNAL"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad input, topic precondition failures
	case CodeInvalidArgument:
		return http.StatusBadRequest

	// Missing or unusable caller identity
	case CodeUnauthenticated,
		CodeGrantInvalid,
		CodeGrantExpired:
		return http.StatusUnauthorized

	// Caller identity is valid but not an authority
	case CodeNotAuthorized:
		return http.StatusForbidden

	// Resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// State doesn't allow the operation right now
	case CodeSessionBusy,
		CodeNoSessionPending,
		CodeAlreadyVoted:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
