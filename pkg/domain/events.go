package domain

import (
	"context"
	"time"
)

// EventName identifies an observability event.
type EventName string

const (
	EventGenerationStarted   EventName = "generation_started"
	EventAttemptStarted      EventName = "attempt_started"
	EventAttemptFailed       EventName = "attempt_failed"
	EventGenerationSucceeded EventName = "generation_succeeded"
	EventGenerationFailed    EventName = "generation_failed"
	EventGenerationCanceled  EventName = "generation_canceled"
	EventStaleDiscard        EventName = "stale_discard"
	EventGateRejected        EventName = "gate_rejected"
	EventRollback            EventName = "rollback"
	EventRescaleApplied      EventName = "rescale_applied"
	EventEditApplied         EventName = "edit_applied"
)

// Event is one structured record sent to the observability sink.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Name      EventName      `json:"name"`
	BoardID   string         `json:"board_id,omitempty"`
	Token     Token          `json:"token,omitempty"`
	Scope     *Scope         `json:"scope,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Err       error          `json:"-"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(name EventName) Event {
	return Event{Timestamp: time.Now(), Name: name}
}

// Reporter is the observability sink.
type Reporter interface {
	Report(ctx context.Context, ev Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, ev Event)

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, ev Event) { f(ctx, ev) }

// NopReporter drops every event.
var NopReporter Reporter = ReporterFunc(func(context.Context, Event) {})
