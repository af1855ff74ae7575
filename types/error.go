package types

import "fmt"

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Request and lookup error codes
const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrAgentNotFound  ErrorCode = "AGENT_NOT_FOUND"
)

// Orchestration error codes.
//
// PLANNING_FAILED, TASK_STUCK and MAX_ITERATIONS are task-level conditions:
// they are captured in the MainTask's status/final_results and returned as a
// normal result, not propagated as errors at the API boundary.
// INTERNAL_ERROR signals an orchestrator bug (the active MainTask vanished
// between steps) and aborts the run.
const (
	ErrPlanningFailed ErrorCode = "PLANNING_FAILED"
	ErrTaskStuck      ErrorCode = "TASK_STUCK"
	ErrMaxIterations  ErrorCode = "MAX_ITERATIONS"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Persistence error codes
const (
	ErrPersistence ErrorCode = "PERSISTENCE_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewNotFoundError creates an AGENT_NOT_FOUND error.
func NewNotFoundError(message string) *Error {
	return &Error{Code: ErrAgentNotFound, Message: message, HTTPStatus: 404}
}

// NewPersistenceError wraps a store failure. Callers must treat the agent's
// in-memory state as possibly stale: the mutation may not have survived.
func NewPersistenceError(message string, cause error) *Error {
	return &Error{Code: ErrPersistence, Message: message, Cause: cause, Retryable: true}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
