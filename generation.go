package boardgen

import (
	"context"

	"github.com/aretw0/boardgen/pkg/domain"
)

// Outcome is how a generation ended.
type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeApplied   Outcome = "applied"
	OutcomeFailed    Outcome = "failed"    // rolled back
	OutcomeDiscarded Outcome = "discarded" // superseded or canceled
)

// Generation is a handle on one in-flight generation.
type Generation struct {
	Token domain.Token
	Scope domain.Scope

	done    chan struct{}
	outcome Outcome
	err     error
}

// Done is closed once the generation has been applied, rolled back or discarded.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Wait blocks until the generation ends or ctx is done.
// It returns the provider error, if any.
func (g *Generation) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcome returns how the generation ended, or OutcomePending.
func (g *Generation) Outcome() Outcome {
	select {
	case <-g.done:
		return g.outcome
	default:
		return OutcomePending
	}
}

// Err returns the terminal provider error once Done is closed.
func (g *Generation) Err() error {
	select {
	case <-g.done:
		return g.err
	default:
		return nil
	}
}
