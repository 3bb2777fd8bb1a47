package retry

import (
	"errors"
	"math/rand/v2"
	"time"
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy configures retry behavior with exponential backoff.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including the initial one).
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps every wait.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied after each retry.
	BackoffFactor float64

	// JitterFactor is the maximum jitter as a fraction of the wait (0-1).
	JitterFactor float64
}

// DefaultPolicy allows two retries waiting 1s then 2s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
	}
}

// Validate checks if the policy is usable.
func (p Policy) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return errors.Join(ErrInvalidPolicy, errors.New("max attempts must be at least 1"))
	case p.InitialBackoff < 0:
		return errors.Join(ErrInvalidPolicy, errors.New("initial backoff must not be negative"))
	case p.MaxBackoff < p.InitialBackoff:
		return errors.Join(ErrInvalidPolicy, errors.New("max backoff must not be below initial backoff"))
	case p.BackoffFactor < 1.0:
		return errors.Join(ErrInvalidPolicy, errors.New("backoff factor must be at least 1"))
	case p.JitterFactor < 0 || p.JitterFactor > 1:
		return errors.Join(ErrInvalidPolicy, errors.New("jitter factor must be within [0,1]"))
	}
	return nil
}

// Backoff returns the wait before retry number n (1-based), without jitter.
func (p Policy) Backoff(n int) time.Duration {
	wait := p.InitialBackoff
	for i := 1; i < n; i++ {
		wait = time.Duration(float64(wait) * p.BackoffFactor)
		if wait >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return min(wait, p.MaxBackoff)
}

func (p Policy) jittered(n int) time.Duration {
	base := p.Backoff(n)
	if p.JitterFactor <= 0 {
		return base
	}
	jitter := (rand.Float64()*2 - 1) * p.JitterFactor
	return time.Duration(float64(base) * (1.0 + jitter))
}
