package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/boardgen/pkg/domain"
)

// LogReporter writes every event to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements domain.Reporter.
func (r *LogReporter) Report(ctx context.Context, ev domain.Event) {
	attrs := []slog.Attr{slog.String("event", string(ev.Name))}
	if ev.BoardID != "" {
		attrs = append(attrs, slog.String("board", ev.BoardID))
	}
	if ev.Token != 0 {
		attrs = append(attrs, slog.Uint64("token", uint64(ev.Token)))
	}
	if ev.Scope != nil {
		attrs = append(attrs, slog.String("scope", ev.Scope.String()))
	}
	if ev.Name == domain.EventAttemptStarted || ev.Name == domain.EventAttemptFailed {
		attrs = append(attrs, slog.Int("attempt", ev.Attempt))
	}
	if ev.Err != nil {
		attrs = append(attrs, slog.String("err", ev.Err.Error()))
	}
	for k, v := range ev.Fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	r.logger.LogAttrs(ctx, levelFor(ev.Name), "board event", attrs...)
}

func levelFor(name domain.EventName) slog.Level {
	switch name {
	case domain.EventGenerationFailed, domain.EventAttemptFailed:
		return slog.LevelWarn
	case domain.EventGenerationStarted, domain.EventGenerationSucceeded,
		domain.EventGenerationCanceled, domain.EventRescaleApplied:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Multi fans events out to every reporter, in order.
func Multi(reporters ...domain.Reporter) domain.Reporter {
	return domain.ReporterFunc(func(ctx context.Context, ev domain.Event) {
		for _, r := range reporters {
			if r != nil {
				r.Report(ctx, ev)
			}
		}
	})
}
