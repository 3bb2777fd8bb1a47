// Package testutils holds helpers shared by the package tests.
package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/retry"
)

// FastPolicy is retry.DefaultPolicy with millisecond waits.
func FastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  2,
	}
}

// Recorder is a domain.Reporter that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// Report implements domain.Reporter.
func (r *Recorder) Report(_ context.Context, ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []domain.EventName {
	events := r.Events()
	out := make([]domain.EventName, len(events))
	for i, ev := range events {
		out[i] = ev.Name
	}
	return out
}

// Count returns how many events named name were recorded.
func (r *Recorder) Count(name domain.EventName) int {
	n := 0
	for _, ev := range r.Events() {
		if ev.Name == name {
			n++
		}
	}
	return n
}

// Has reports whether at least one event named name was recorded.
func (r *Recorder) Has(name domain.EventName) bool {
	return r.Count(name) > 0
}

// BlockingProvider parks every call until the test hands it a payload.
type BlockingProvider struct {
	calls chan chan string
}

// NewBlockingProvider creates a BlockingProvider.
func NewBlockingProvider() *BlockingProvider {
	return &BlockingProvider{calls: make(chan chan string, 8)}
}

// Generate implements ports.ContentProvider.
func (p *BlockingProvider) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	reply := make(chan string, 1)
	p.calls <- reply
	select {
	case raw := <-reply:
		return raw, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Next returns the reply channel of the next parked call.
func (p *BlockingProvider) Next(t *testing.T) chan<- string {
	t.Helper()
	select {
	case c := <-p.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("provider was not called")
		return nil
	}
}
