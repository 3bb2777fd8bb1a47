package boardgen

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/generation"
	"github.com/aretw0/boardgen/pkg/merge"
	"github.com/aretw0/boardgen/pkg/ports"
	"github.com/aretw0/boardgen/pkg/provider"
	"github.com/aretw0/boardgen/pkg/retry"
	"github.com/google/uuid"
)

// Board is the high-level entry point of the library.
// It wires the generation controller, the write gate, the retrying requester
// and the merge strategies around one document.
type Board struct {
	id       string
	topic    string
	created  time.Time
	provider ports.ContentProvider
	reporter domain.Reporter
	logger   *slog.Logger
	rng      *rand.Rand

	retryOpts []retry.Option
	requester *retry.Requester
	ctrl      *generation.Controller

	inflight sync.WaitGroup
}

// Option defines a functional option for configuring the Board.
type Option func(*Board)

// WithID sets the board id. A random UUID is used otherwise.
func WithID(id string) Option {
	return func(b *Board) { b.id = id }
}

// WithTopic sets the subject passed to the provider.
func WithTopic(topic string) Option {
	return func(b *Board) { b.topic = topic }
}

// WithProvider sets the content provider (default: provider.Static).
func WithProvider(p ports.ContentProvider) Option {
	return func(b *Board) { b.provider = p }
}

// WithReporter registers the observability sink.
func WithReporter(r domain.Reporter) Option {
	return func(b *Board) { b.reporter = r }
}

// WithLogger sets a custom structured logger for the board.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) { b.logger = logger }
}

// WithRetryPolicy overrides retry.DefaultPolicy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(b *Board) { b.retryOpts = append(b.retryOpts, retry.WithPolicy(p)) }
}

// WithConnectivityChecker sets the precondition checked before each generation.
func WithConnectivityChecker(c ports.ConnectivityChecker) Option {
	return func(b *Board) { b.retryOpts = append(b.retryOpts, retry.WithConnectivityChecker(c)) }
}

// WithRand sets the source used to pick bonus cells. Merges for one board are
// serialized, but the source must not be shared between boards.
func WithRand(rng *rand.Rand) Option {
	return func(b *Board) { b.rng = rng }
}

// New wraps doc in a Board. The board takes ownership of doc.
func New(doc *domain.Document, opts ...Option) (*Board, error) {
	sections, cells := doc.Shape()
	if sections == 0 || cells == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidDimensions)
	}

	b := &Board{}
	for _, opt := range opts {
		opt(b)
	}
	if b.id == "" {
		b.id = uuid.NewString()
	}
	if b.provider == nil {
		b.provider = provider.NewStatic()
	}
	if b.reporter == nil {
		b.reporter = domain.NopReporter
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	b.logger = b.logger.With("board", b.id)

	b.requester = retry.New(append([]retry.Option{
		retry.WithReporter(b.reporter),
		retry.WithLogger(b.logger),
	}, b.retryOpts...)...)
	b.ctrl = generation.NewController(doc,
		generation.WithBoardID(b.id),
		generation.WithReporter(b.reporter),
		generation.WithLogger(b.logger),
	)
	return b, nil
}

// Open restores a persisted board.
func Open(rec *domain.BoardRecord, opts ...Option) (*Board, error) {
	if rec == nil || rec.Document == nil {
		return nil, fmt.Errorf("%w: nil record", domain.ErrInvalidDimensions)
	}
	opts = append([]Option{WithID(rec.ID), WithTopic(rec.Topic)}, opts...)
	b, err := New(rec.Document.Clone(), opts...)
	if err != nil {
		return nil, err
	}
	b.created = rec.CreatedAt
	return b, nil
}

// ID returns the board id.
func (b *Board) ID() string { return b.id }

// Topic returns the subject passed to the provider.
func (b *Board) Topic() string { return b.topic }

// Document returns a deep copy of the current document.
func (b *Board) Document() *domain.Document { return b.ctrl.Gate().Read() }

// Status returns the generation state machine's current view.
func (b *Board) Status() domain.Status { return b.ctrl.Status() }

// Record snapshots the board for persistence.
func (b *Board) Record() *domain.BoardRecord {
	rec := domain.NewBoardRecord(b.id, b.topic, b.Document())
	if !b.created.IsZero() {
		rec.CreatedAt = b.created
	}
	return rec
}

// Wait blocks until every generation started on this board has finished.
func (b *Board) Wait() { b.inflight.Wait() }

// Generate starts a generation for scope and returns immediately.
// The board is locked until the generation ends or a newer one supersedes it.
//
// The provider call is detached from ctx cancellation: only Cancel ends the
// generation early, and even then the call itself runs to completion.
func (b *Board) Generate(ctx context.Context, scope domain.Scope) (*Generation, error) {
	doc := b.Document()
	sections, cells := doc.Shape()
	if err := scope.Validate(sections, cells); err != nil {
		return nil, err
	}
	strategy, err := merge.For(scope, b.rng)
	if err != nil {
		return nil, err
	}

	prompt := b.promptFor(doc, scope)
	runCtx := context.WithoutCancel(ctx)
	tok := b.ctrl.Start(runCtx, scope)

	g := &Generation{Token: tok, Scope: scope, done: make(chan struct{})}
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(g.done)
		b.run(runCtx, g, prompt, strategy)
	}()
	return g, nil
}

func (b *Board) run(ctx context.Context, g *Generation, prompt domain.PromptContext, strategy merge.Strategy) {
	meta := domain.Event{BoardID: b.id, Token: g.Token, Scope: &g.Scope}
	res, err := b.requester.Execute(ctx, meta, func(ctx context.Context, attempt int) (domain.ProviderResult, error) {
		raw, err := b.provider.Generate(ctx, domain.GenerationRequest{
			Scope:   g.Scope,
			Prompt:  prompt,
			Attempt: attempt,
		})
		if err != nil {
			return domain.ProviderResult{}, err
		}
		return provider.Decode(g.Scope, raw)
	})

	if err != nil {
		g.err = err
		if b.ctrl.Reject(ctx, g.Token, err) {
			g.outcome = OutcomeFailed
		} else {
			g.outcome = OutcomeDiscarded
		}
		return
	}

	applied := b.ctrl.Resolve(ctx, g.Token, func(doc *domain.Document) {
		doc.Sections = strategy(doc.Sections, res)
	})
	if applied {
		g.outcome = OutcomeApplied
	} else {
		g.outcome = OutcomeDiscarded
	}
}

func (b *Board) promptFor(doc *domain.Document, scope domain.Scope) domain.PromptContext {
	sections, cells := doc.Shape()
	p := domain.PromptContext{
		Topic:           b.topic,
		SectionCount:    sections,
		CellsPerSection: cells,
		SectionTitles:   make([]string, sections),
	}
	for i, sec := range doc.Sections {
		p.SectionTitles[i] = sec.Title
	}

	content := func(c domain.Cell) domain.CellContent {
		return domain.CellContent{PromptText: c.PromptText, RevealedText: c.RevealedText, Bonus: c.Bonus}
	}
	switch scope.Kind {
	case domain.ScopeRefresh:
		for _, sec := range doc.Sections {
			for _, c := range sec.Cells {
				p.Existing = append(p.Existing, content(c))
			}
		}
	case domain.ScopeSection:
		for _, c := range doc.Sections[scope.Section].Cells {
			p.Existing = append(p.Existing, content(c))
		}
	case domain.ScopeCell:
		p.Existing = []domain.CellContent{content(*doc.CellAt(scope.Section, scope.Cell))}
	}
	return p
}

// Cancel aborts the current generation, restoring the board to its state
// before the generation started. It reports whether anything was canceled.
func (b *Board) Cancel(ctx context.Context) bool {
	_, ok := b.ctrl.CancelCurrent(ctx)
	return ok
}

// Rescale sets every point value to (position+1) * scale.
// Returns domain.ErrLocked while a generation is in flight.
func (b *Board) Rescale(ctx context.Context, scale int) error {
	if scale <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidScale, scale)
	}
	var from int
	ok := b.ctrl.Gate().Write(ctx, func(doc *domain.Document) {
		from = domain.CurrentScale(doc.Sections)
		doc.Sections = merge.Rescale(doc.Sections, scale)
	})
	if !ok {
		return domain.ErrLocked
	}

	ev := domain.NewEvent(domain.EventRescaleApplied)
	ev.BoardID = b.id
	ev.Fields = map[string]any{"from": from, "to": scale}
	b.reporter.Report(ctx, ev)
	return nil
}

// EditCell replaces the text of one cell.
func (b *Board) EditCell(ctx context.Context, section, cell int, prompt, revealed string) error {
	return b.editCell(ctx, "edit_cell", section, cell, func(c *domain.Cell) {
		c.PromptText = prompt
		c.RevealedText = revealed
	})
}

// SetAnswered marks a cell as answered or not.
func (b *Board) SetAnswered(ctx context.Context, section, cell int, answered bool) error {
	return b.editCell(ctx, "set_answered", section, cell, func(c *domain.Cell) { c.Answered = answered })
}

// SetVoided marks a cell as voided or not.
func (b *Board) SetVoided(ctx context.Context, section, cell int, voided bool) error {
	return b.editCell(ctx, "set_voided", section, cell, func(c *domain.Cell) { c.Voided = voided })
}

// SetTitle renames a section.
func (b *Board) SetTitle(ctx context.Context, section int, title string) error {
	sections, cells := b.Document().Shape()
	scope := domain.SectionScope(section)
	if err := scope.Validate(sections, cells); err != nil {
		return err
	}
	ok := b.ctrl.Gate().Write(ctx, func(doc *domain.Document) {
		doc.Sections[section].Title = title
	})
	if !ok {
		return domain.ErrLocked
	}
	b.reportEdit(ctx, "set_title", scope)
	return nil
}

func (b *Board) editCell(ctx context.Context, op string, section, cell int, edit func(*domain.Cell)) error {
	sections, cells := b.Document().Shape()
	scope := domain.CellScope(section, cell)
	if err := scope.Validate(sections, cells); err != nil {
		return err
	}
	ok := b.ctrl.Gate().Write(ctx, func(doc *domain.Document) {
		edit(doc.CellAt(section, cell))
	})
	if !ok {
		return domain.ErrLocked
	}
	b.reportEdit(ctx, op, scope)
	return nil
}

func (b *Board) reportEdit(ctx context.Context, op string, scope domain.Scope) {
	ev := domain.NewEvent(domain.EventEditApplied)
	ev.BoardID = b.id
	ev.Scope = &scope
	ev.Fields = map[string]any{"op": op}
	b.logger.Debug("manual edit applied", "op", op, "scope", scope.String())
	b.reporter.Report(ctx, ev)
}
