package generation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/domain"
)

// Mutator edits the document in place. It runs with the controller lock held
// and must not call back into the Controller or its Gate.
type Mutator func(doc *domain.Document)

// Controller is the generation state machine of one board.
type Controller struct {
	mu sync.Mutex

	doc      *domain.Document
	state    domain.GenerationState
	current  domain.Token
	minted   domain.Token
	scope    *domain.Scope
	snapshot []domain.Section

	boardID  string
	reporter domain.Reporter
	logger   *slog.Logger
	gate     *Gate
}

// Option configures a Controller.
type Option func(*Controller)

// WithBoardID stamps the board id on every reported event.
func WithBoardID(id string) Option {
	return func(c *Controller) { c.boardID = id }
}

// WithReporter sets the observability sink.
func WithReporter(r domain.Reporter) Option {
	return func(c *Controller) { c.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController takes ownership of doc. Callers must not touch doc afterwards
// except through the Gate.
func NewController(doc *domain.Document, opts ...Option) *Controller {
	c := &Controller{
		doc:      doc,
		state:    domain.StateIdle,
		reporter: domain.NopReporter,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.gate = &Gate{c: c}
	return c
}

// Gate returns the board's write gate.
func (c *Controller) Gate() *Gate { return c.gate }

// Status returns the current state, token and scope.
func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := domain.Status{State: c.state, Current: c.current}
	if c.scope != nil {
		s := *c.scope
		st.Scope = &s
	}
	return st
}

// State returns the current generation state.
func (c *Controller) State() domain.GenerationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the authoritative token, or 0 when no generation is in flight.
func (c *Controller) Current() domain.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Start begins a generation for scope and locks the board against writes.
// It always succeeds. An in-flight generation is superseded, not aborted.
func (c *Controller) Start(ctx context.Context, scope domain.Scope) domain.Token {
	c.mu.Lock()
	c.minted++
	t := c.minted
	prev := c.current

	// A superseded generation never wrote, so the existing snapshot is
	// still the pre-generation document.
	if !c.state.IsLocked() || c.snapshot == nil {
		c.snapshot = domain.CloneSections(c.doc.Sections)
	}
	c.state = domain.StateGenerating
	c.current = t
	c.scope = &scope
	c.mu.Unlock()

	ev := c.event(domain.EventGenerationStarted, t, &scope)
	if prev != 0 {
		ev.Fields = map[string]any{"superseded": uint64(prev)}
		c.logger.Info("generation superseded", "board", c.boardID, "token", uint64(prev), "by", uint64(t))
	}
	c.logger.Debug("generation started", "board", c.boardID, "token", uint64(t), "scope", scope.String())
	c.reporter.Report(ctx, ev)
	return t
}

// Resolve applies merge through the gate if t is still current.
// It returns false, and reports a stale discard, otherwise.
func (c *Controller) Resolve(ctx context.Context, t domain.Token, merge Mutator) bool {
	c.mu.Lock()
	if t == 0 || t != c.current || c.state != domain.StateGenerating {
		scope := c.scope
		c.mu.Unlock()
		c.discard(ctx, t, scope, nil)
		return false
	}
	scope := c.scope

	c.state = domain.StateApplying
	before := domain.CloneSections(c.doc.Sections)
	c.gate.applyLocked(t, merge)
	diff := domain.Diff(&domain.Document{Sections: before}, c.doc)
	c.finishLocked(domain.StateComplete)
	c.mu.Unlock()

	ev := c.event(domain.EventGenerationSucceeded, t, scope)
	if diff != nil {
		ev.Fields = map[string]any{"cells_changed": len(diff.Cells), "titles_changed": len(diff.Titles)}
	}
	c.logger.Info("generation applied", "board", c.boardID, "token", uint64(t))
	c.reporter.Report(ctx, ev)
	return true
}

// Reject ends the generation as failed and restores the snapshot if t is
// still current. It returns false, and reports a stale discard, otherwise.
func (c *Controller) Reject(ctx context.Context, t domain.Token, err error) bool {
	c.mu.Lock()
	if t == 0 || t != c.current || !c.state.IsLocked() {
		scope := c.scope
		c.mu.Unlock()
		c.discard(ctx, t, scope, err)
		return false
	}
	scope := c.scope
	restored := c.restoreLocked()
	c.finishLocked(domain.StateFailed)
	c.mu.Unlock()

	if restored {
		c.reporter.Report(ctx, c.event(domain.EventRollback, t, scope))
	}
	ev := c.event(domain.EventGenerationFailed, t, scope)
	ev.Err = err
	c.logger.Warn("generation failed", "board", c.boardID, "token", uint64(t), "err", err)
	c.reporter.Report(ctx, ev)
	return true
}

// Cancel ends the generation as canceled and restores the snapshot if t is
// still current.
func (c *Controller) Cancel(ctx context.Context, t domain.Token) bool {
	c.mu.Lock()
	if t == 0 || t != c.current || !c.state.IsLocked() {
		c.mu.Unlock()
		return false
	}
	return c.cancelLocked(ctx, t)
}

// CancelCurrent cancels whichever generation is current, if any.
func (c *Controller) CancelCurrent(ctx context.Context) (domain.Token, bool) {
	c.mu.Lock()
	t := c.current
	if t == 0 || !c.state.IsLocked() {
		c.mu.Unlock()
		return 0, false
	}
	return t, c.cancelLocked(ctx, t)
}

// cancelLocked is entered with c.mu held and releases it.
func (c *Controller) cancelLocked(ctx context.Context, t domain.Token) bool {
	scope := c.scope
	restored := c.restoreLocked()
	c.finishLocked(domain.StateCanceled)
	c.mu.Unlock()

	if restored {
		c.reporter.Report(ctx, c.event(domain.EventRollback, t, scope))
	}
	c.logger.Info("generation canceled", "board", c.boardID, "token", uint64(t))
	c.reporter.Report(ctx, c.event(domain.EventGenerationCanceled, t, scope))
	return true
}

// restoreLocked puts the snapshot back. The snapshot is consumed, so a
// second restore is a no-op.
func (c *Controller) restoreLocked() bool {
	if c.snapshot == nil {
		return false
	}
	c.doc.Sections = c.snapshot
	c.snapshot = nil
	return true
}

func (c *Controller) finishLocked(state domain.GenerationState) {
	c.state = state
	c.current = 0
	c.snapshot = nil
}

func (c *Controller) discard(ctx context.Context, t domain.Token, scope *domain.Scope, err error) {
	ev := c.event(domain.EventStaleDiscard, t, scope)
	ev.Err = err
	c.logger.Debug("discarding stale result", "board", c.boardID, "token", uint64(t))
	c.reporter.Report(ctx, ev)
}

func (c *Controller) event(name domain.EventName, t domain.Token, scope *domain.Scope) domain.Event {
	ev := domain.NewEvent(name)
	ev.BoardID = c.boardID
	ev.Token = t
	if scope != nil {
		s := *scope
		ev.Scope = &s
	}
	return ev
}
