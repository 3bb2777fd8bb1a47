package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusReporter records generation metrics.
type PrometheusReporter struct {
	generations   *prometheus.CounterVec
	attempts      *prometheus.CounterVec
	failures      *prometheus.CounterVec
	staleDiscards prometheus.Counter
	gateRejects   prometheus.Counter
	edits         *prometheus.CounterVec
	duration      *prometheus.HistogramVec

	mu      sync.Mutex
	started map[string]time.Time
}

// NewPrometheusReporter creates the collectors and registers them with reg.
func NewPrometheusReporter(reg prometheus.Registerer) (*PrometheusReporter, error) {
	r := &PrometheusReporter{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardgen_generations_total",
			Help: "Generations by scope kind and outcome",
		}, []string{"scope", "outcome"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardgen_provider_attempts_total",
			Help: "Provider attempts by scope kind",
		}, []string{"scope"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardgen_provider_failures_total",
			Help: "Failed provider attempts by retry class",
		}, []string{"class"}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boardgen_stale_discards_total",
			Help: "Results discarded because a newer generation superseded them",
		}),
		gateRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boardgen_gate_rejections_total",
			Help: "Writes rejected while a generation was in flight",
		}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boardgen_edits_total",
			Help: "Manual edits and rescales applied",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boardgen_generation_duration_seconds",
			Help:    "Time from start to the end of the authoritative generation",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"scope", "outcome"}),
		started: make(map[string]time.Time),
	}

	for _, c := range []prometheus.Collector{
		r.generations, r.attempts, r.failures, r.staleDiscards, r.gateRejects, r.edits, r.duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return r, nil
}

// Report implements domain.Reporter.
func (r *PrometheusReporter) Report(_ context.Context, ev domain.Event) {
	scope := "none"
	if ev.Scope != nil {
		scope = string(ev.Scope.Kind)
	}

	switch ev.Name {
	case domain.EventGenerationStarted:
		r.mu.Lock()
		r.started[key(ev)] = ev.Timestamp
		r.mu.Unlock()
	case domain.EventAttemptStarted:
		r.attempts.WithLabelValues(scope).Inc()
	case domain.EventAttemptFailed:
		class := "unknown"
		if c, ok := ev.Fields["class"].(string); ok {
			class = c
		}
		r.failures.WithLabelValues(class).Inc()
	case domain.EventGenerationSucceeded:
		r.finish(ev, scope, "applied")
	case domain.EventGenerationFailed:
		r.finish(ev, scope, "failed")
	case domain.EventGenerationCanceled:
		r.finish(ev, scope, "canceled")
	case domain.EventStaleDiscard:
		r.staleDiscards.Inc()
		r.forget(ev)
	case domain.EventGateRejected:
		r.gateRejects.Inc()
	case domain.EventEditApplied:
		op := "edit"
		if o, ok := ev.Fields["op"].(string); ok {
			op = o
		}
		r.edits.WithLabelValues(op).Inc()
	case domain.EventRescaleApplied:
		r.edits.WithLabelValues("rescale").Inc()
	}
}

func (r *PrometheusReporter) finish(ev domain.Event, scope, outcome string) {
	r.generations.WithLabelValues(scope, outcome).Inc()
	r.mu.Lock()
	start, ok := r.started[key(ev)]
	delete(r.started, key(ev))
	r.mu.Unlock()
	if ok {
		r.duration.WithLabelValues(scope, outcome).Observe(ev.Timestamp.Sub(start).Seconds())
	}
}

// forget drops the start time of a generation that will never finish as
// authoritative. Superseded tokens only show up here once their result lands.
func (r *PrometheusReporter) forget(ev domain.Event) {
	r.mu.Lock()
	delete(r.started, key(ev))
	r.mu.Unlock()
}

func key(ev domain.Event) string {
	return fmt.Sprintf("%s/%d", ev.BoardID, ev.Token)
}
