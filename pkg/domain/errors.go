package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBoardNotFound is returned when a board ID cannot be found in the store.
	ErrBoardNotFound = errors.New("board not found")

	// ErrInvalidScope is returned when a scope addresses a section or cell that does not exist.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidScale is returned for non-positive point scales.
	ErrInvalidScale = errors.New("invalid scale")

	// ErrInvalidDimensions is returned when a board would have no sections or cells.
	ErrInvalidDimensions = errors.New("invalid board dimensions")

	// ErrLocked is returned by the Board write helpers when the gate dropped
	// the write. The gate itself only reports rejections.
	ErrLocked = errors.New("board is locked by an in-flight generation")
)

// TransientProviderError is a provider failure worth retrying
// (network errors, 5xx, 429).
type TransientProviderError struct {
	StatusCode int
	Err        error
}

func (e *TransientProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient provider error (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transient provider error: %v", e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

// ValidationError is a client-side failure: the provider rejected the request
// (4xx other than 429) or the request could not be built. Never retried.
type ValidationError struct {
	StatusCode int
	Err        error
}

func (e *ValidationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request rejected (HTTP %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// MalformedResponseError means the provider answered but the payload could
// not be coerced into the shape the scope expects.
type MalformedResponseError struct {
	Scope  Scope
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Scope, e.Reason)
}

// OfflineError is returned before any attempt when the connectivity check fails.
type OfflineError struct {
	Err error
}

func (e *OfflineError) Error() string {
	if e.Err == nil {
		return "offline"
	}
	return fmt.Sprintf("offline: %v", e.Err)
}

func (e *OfflineError) Unwrap() error { return e.Err }

// ExhaustedError is the terminal error after the retry budget ran out.
type ExhaustedError struct {
	Attempts      int
	CorrelationID string
	Last          error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts (correlation %s): %v", e.Attempts, e.CorrelationID, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
