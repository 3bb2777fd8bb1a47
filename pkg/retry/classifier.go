package retry

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/boardgen/pkg/domain"
)

// Class is the retry disposition of an error.
type Class int

const (
	// Transient failures (network, 5xx, 429, deadlines) are retried.
	Transient Class = iota
	// Malformed responses are retried with the same budget.
	Malformed
	// Terminal failures end the generation immediately.
	Terminal
)

func (c Class) String() string {
	switch c {
	case Transient:
		return "transient"
	case Malformed:
		return "malformed"
	default:
		return "terminal"
	}
}

// Retryable reports whether another attempt may be made.
func (c Class) Retryable() bool { return c != Terminal }

// Classify maps an error onto its retry class.
func Classify(err error) Class {
	if err == nil {
		return Terminal
	}
	if errors.Is(err, context.Canceled) {
		return Terminal
	}

	var offline *domain.OfflineError
	if errors.As(err, &offline) {
		return Terminal
	}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return Terminal
	}
	var malformed *domain.MalformedResponseError
	if errors.As(err, &malformed) {
		return Malformed
	}
	var transient *domain.TransientProviderError
	if errors.As(err, &transient) {
		if isClientStatus(transient.StatusCode) {
			return Terminal
		}
		return Transient
	}

	// Network errors, deadlines and anything unrecognised.
	return Transient
}

// StatusError wraps a failed HTTP exchange into the matching domain error:
// 4xx other than 429 is a ValidationError, everything else is transient.
func StatusError(code int, err error) error {
	if isClientStatus(code) {
		return &domain.ValidationError{StatusCode: code, Err: err}
	}
	return &domain.TransientProviderError{StatusCode: code, Err: err}
}

func isClientStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}
