package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/ports"
	"github.com/google/uuid"
)

// AttemptFunc performs one provider attempt. attempt is zero-based.
type AttemptFunc func(ctx context.Context, attempt int) (domain.ProviderResult, error)

// Requester wraps provider calls with the connectivity precheck, bounded
// retries and attempt reporting.
type Requester struct {
	policy   Policy
	checker  ports.ConnectivityChecker
	reporter domain.Reporter
	logger   *slog.Logger
}

// Option configures a Requester.
type Option func(*Requester)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(r *Requester) { r.policy = p }
}

// WithConnectivityChecker sets the precondition checked before any attempt.
func WithConnectivityChecker(c ports.ConnectivityChecker) Option {
	return func(r *Requester) { r.checker = c }
}

// WithReporter sets the observability sink for attempt events.
func WithReporter(rep domain.Reporter) Option {
	return func(r *Requester) { r.reporter = rep }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Requester) { r.logger = l }
}

// New creates a Requester. Without options it uses DefaultPolicy, assumes the
// provider is always reachable and reports nowhere.
func New(opts ...Option) *Requester {
	r := &Requester{
		policy:   DefaultPolicy(),
		checker:  ports.AlwaysOnline{},
		reporter: domain.NopReporter,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the active policy.
func (r *Requester) Policy() Policy { return r.policy }

// Execute runs fn until it succeeds, fails terminally or the attempt budget is
// spent. meta carries the board, token and scope stamped on every event.
//
// Terminal errors are returned unchanged. A spent budget returns
// *domain.ExhaustedError wrapping the last error.
func (r *Requester) Execute(ctx context.Context, meta domain.Event, fn AttemptFunc) (domain.ProviderResult, error) {
	if err := r.checker.Online(ctx); err != nil {
		r.logger.Warn("provider offline, skipping generation", "err", err)
		return domain.ProviderResult{}, &domain.OfflineError{Err: err}
	}

	var last error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := r.policy.jittered(attempt)
			r.logger.Debug("waiting before retry", "attempt", attempt, "wait", wait)
			if err := sleep(ctx, wait); err != nil {
				return domain.ProviderResult{}, err
			}
		}

		r.report(ctx, meta, domain.EventAttemptStarted, attempt, nil)
		res, err := fn(ctx, attempt)
		if err == nil {
			return res, nil
		}
		last = err

		class := Classify(err)
		r.report(ctx, meta, domain.EventAttemptFailed, attempt, err, "class", class.String())
		r.logger.Warn("provider attempt failed",
			"attempt", attempt,
			"class", class.String(),
			"err", err,
		)
		if !class.Retryable() {
			return domain.ProviderResult{}, err
		}
	}

	return domain.ProviderResult{}, &domain.ExhaustedError{
		Attempts:      r.policy.MaxAttempts,
		CorrelationID: uuid.NewString(),
		Last:          last,
	}
}

func (r *Requester) report(ctx context.Context, meta domain.Event, name domain.EventName, attempt int, err error, kv ...any) {
	ev := meta
	ev.Timestamp = time.Now()
	ev.Name = name
	ev.Attempt = attempt
	ev.Err = err
	if len(kv) > 0 {
		ev.Fields = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				ev.Fields[k] = kv[i+1]
			}
		}
	}
	r.reporter.Report(ctx, ev)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
