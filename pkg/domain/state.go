package domain

// GenerationState is the phase of the generation state machine.
type GenerationState string

const (
	StateIdle       GenerationState = "idle"
	StateGenerating GenerationState = "generating" // request in flight, writes locked
	StateApplying   GenerationState = "applying"   // result being merged, writes locked
	StateComplete   GenerationState = "complete"
	StateFailed     GenerationState = "failed"
	StateCanceled   GenerationState = "canceled"
)

// IsLocked reports whether external writes are rejected in this state.
func (s GenerationState) IsLocked() bool {
	return s == StateGenerating || s == StateApplying
}

// IsTerminal reports whether the last generation has ended.
func (s GenerationState) IsTerminal() bool {
	switch s {
	case StateComplete, StateFailed, StateCanceled:
		return true
	}
	return false
}

// Token identifies one generation attempt. Zero means "no token".
// Only equality is meaningful.
type Token uint64

// Status is a read-only view of a board's generation bookkeeping.
type Status struct {
	State   GenerationState `json:"state"`
	Current Token           `json:"current,omitempty"`
	Scope   *Scope          `json:"scope,omitempty"`
}
