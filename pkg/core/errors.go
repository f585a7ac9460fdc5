// Package core provides the shared domain types, configuration, and error
// taxonomy for the coachmem conversational memory engine.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrMessageEmpty indicates the chat message was empty after trimming.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrMessageTooLong indicates the chat message exceeds the configured limit.
	ErrMessageTooLong = errors.New("message exceeds maximum length")

	// ErrProfileInvalid indicates the supplied profile is missing or has no archetype.
	ErrProfileInvalid = errors.New("user profile is missing or invalid")

	// ErrNoProfile indicates no stored profile exists for the user.
	// This is an expected outcome for profile updates, not a failure.
	ErrNoProfile = errors.New("no profile exists for user")

	// ErrUpstream indicates the completion service failed.
	ErrUpstream = errors.New("completion service failed")

	// ErrUpstreamTimeout indicates the completion service exceeded its timeout.
	ErrUpstreamTimeout = errors.New("completion service timed out")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStorageOperation indicates that a persistence operation failed.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrNotFound indicates that a requested record was not found.
	ErrNotFound = errors.New("record not found")
)

// CoachError wraps errors with operation context.
//
// It provides additional context about which operation failed,
// making error messages more informative for debugging.
//
// Example:
//
//	err := &CoachError{
//	    Op:  "Append",
//	    Err: ErrStorageOperation,
//	}
//	// Error() returns: "coachmem: Append: storage operation failed"
type CoachError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "coachmem: <Op>: <Err>"
func (e *CoachError) Error() string {
	return fmt.Sprintf("coachmem: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with CoachError.
func (e *CoachError) Unwrap() error {
	return e.Err
}

// NewCoachError creates a new CoachError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewCoachError("Append", err)
//	}
//
// Parameters:
//   - op: Name of the operation (e.g., "Chat", "Append", "UpdateProfile")
//   - err: The underlying error to wrap
//
// Returns a CoachError, or nil if err is nil.
func NewCoachError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CoachError{
		Op:  op,
		Err: err,
	}
}
