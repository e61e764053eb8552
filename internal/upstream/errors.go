package upstream

import "fmt"

// AuthError is a 401/403 from any gated upstream call. It is never
// retried; the caller destroys the session and redirects to login.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth rejected (%d)", e.StatusCode)
}

// ValidationError carries the per-field error map returned by create
// and update calls. It is surfaced inline next to the offending field
// and leaves the rest of the form untouched.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ConflictError is a business-rule rejection (duplicate barcode,
// already-assigned employee, referential constraint on delete). The
// upstream message is surfaced verbatim.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError is a distinct non-error UI state, not a failure; it
// must never be conflated with NetworkError.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "not found"
}

// NetworkError means the request could not complete at the transport
// level. Logged, surfaced as a generic failure, never auto-retried.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is any other unexpected upstream status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
}
