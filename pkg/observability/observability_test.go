package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(name domain.EventName, tok domain.Token, scope domain.Scope) domain.Event {
	ev := domain.NewEvent(name)
	ev.BoardID = "b1"
	ev.Token = tok
	ev.Scope = &scope
	return ev
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := observability.NewLogReporter(logger)

	ev := event(domain.EventGenerationFailed, 3, domain.SectionScope(1))
	ev.Err = errors.New("exhausted")
	r.Report(context.Background(), ev)

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"event":"generation_failed"`)
	assert.Contains(t, out, `"scope":"section[1]"`)
	assert.Contains(t, out, `"token":3`)
	assert.Contains(t, out, `"err":"exhausted"`)
}

func TestMulti(t *testing.T) {
	var got []string
	a := domain.ReporterFunc(func(_ context.Context, ev domain.Event) { got = append(got, "a:"+string(ev.Name)) })
	b := domain.ReporterFunc(func(_ context.Context, ev domain.Event) { got = append(got, "b:"+string(ev.Name)) })

	observability.Multi(a, nil, b).Report(context.Background(), domain.NewEvent(domain.EventRollback))

	assert.Equal(t, []string{"a:rollback", "b:rollback"}, got)
}

func TestPrometheusReporter(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := observability.NewPrometheusReporter(reg)
	require.NoError(t, err)
	ctx := context.Background()
	scope := domain.BoardScope()

	start := event(domain.EventGenerationStarted, 1, scope)
	r.Report(ctx, start)
	r.Report(ctx, event(domain.EventAttemptStarted, 1, scope))

	failed := event(domain.EventAttemptFailed, 1, scope)
	failed.Fields = map[string]any{"class": "transient"}
	r.Report(ctx, failed)

	r.Report(ctx, event(domain.EventAttemptStarted, 1, scope))
	done := event(domain.EventGenerationSucceeded, 1, scope)
	done.Timestamp = start.Timestamp.Add(500 * time.Millisecond)
	r.Report(ctx, done)

	r.Report(ctx, event(domain.EventStaleDiscard, 0, scope))
	r.Report(ctx, event(domain.EventGateRejected, 0, scope))

	count, err := testutil.GatherAndCount(reg, "boardgen_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP boardgen_generations_total Generations by scope kind and outcome
# TYPE boardgen_generations_total counter
boardgen_generations_total{outcome="applied",scope="board"} 1
# HELP boardgen_provider_attempts_total Provider attempts by scope kind
# TYPE boardgen_provider_attempts_total counter
boardgen_provider_attempts_total{scope="board"} 2
# HELP boardgen_provider_failures_total Failed provider attempts by retry class
# TYPE boardgen_provider_failures_total counter
boardgen_provider_failures_total{class="transient"} 1
# HELP boardgen_stale_discards_total Results discarded because a newer generation superseded them
# TYPE boardgen_stale_discards_total counter
boardgen_stale_discards_total 1
# HELP boardgen_gate_rejections_total Writes rejected while a generation was in flight
# TYPE boardgen_gate_rejections_total counter
boardgen_gate_rejections_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"boardgen_generations_total",
		"boardgen_provider_attempts_total",
		"boardgen_provider_failures_total",
		"boardgen_stale_discards_total",
		"boardgen_gate_rejections_total",
	))

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestPrometheusReporter_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewPrometheusReporter(reg)
	require.NoError(t, err)
	_, err = observability.NewPrometheusReporter(reg)
	assert.Error(t, err)
}
