package spanloom

import (
	"context"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys the engine records to its metricz.Registry. These are about
// the engine's own execution, never about the domain spans it produces.
const (
	metricSpansEmitted    = metricz.Key("spanloom.spans_emitted")
	metricMatchesDiscard  = metricz.Key("spanloom.matches_discarded")
	metricEventsProcessed = metricz.Key("spanloom.events_processed")
	metricRulesActive     = metricz.Key("spanloom.rules_active")
)

// Stats is a point-in-time snapshot of an Engine's self-instrumentation
// counters, gathered after a run completes.
type Stats struct {
	SpansEmitted     int64
	MatchesDiscarded int64
	EventsProcessed  int64
	RulesActive      int64
}

// instrumentation bundles the self-observability dependencies an Engine
// uses to watch its own run: tracez for a run-scoped trace, metricz for
// counters, hookz for synchronous span-emitted callbacks, and clockz for
// an injectable wall clock behind diagnostic timestamps.
type instrumentation struct {
	tracer  *tracez.Tracer
	metrics *metricz.Registry
	hooks   *hookz.Hooks[Span]
	clock   clockz.Clock
}

func newInstrumentation(clock clockz.Clock) *instrumentation {
	if clock == nil {
		clock = clockz.Real()
	}
	return &instrumentation{
		tracer:  tracez.New(),
		metrics: metricz.New(),
		hooks:   hookz.New[Span](),
		clock:   clock,
	}
}

// OnSpan registers fn to be called synchronously whenever the engine
// appends a span to its sink. It returns a function that removes fn.
func (inst *instrumentation) OnSpan(fn func(context.Context, Span) error) func() {
	unhook, err := inst.hooks.Hook(hookz.Key("span.emitted"), fn)
	if err != nil {
		return func() {}
	}
	return func() { unhook() }
}

func (inst *instrumentation) emitSpan(ctx context.Context, span Span) {
	inst.metrics.Counter(metricSpansEmitted).Add(1)
	_, _ = inst.hooks.Emit(ctx, "span.emitted", span) //nolint:errcheck // best-effort fan-out
}

func (inst *instrumentation) recordDiscard() {
	inst.metrics.Counter(metricMatchesDiscard).Add(1)
}

func (inst *instrumentation) recordEventsProcessed(n int) {
	inst.metrics.Counter(metricEventsProcessed).Add(float64(n))
}

// recordRulesActive records the rule count once per Engine construction.
// metricz exposes a Counter, not a gauge, so this is recorded as a single
// addition rather than re-set per run.
func (inst *instrumentation) recordRulesActive(n int) {
	inst.metrics.Counter(metricRulesActive).Add(float64(n))
}

func (inst *instrumentation) snapshot() Stats {
	return Stats{
		SpansEmitted:     int64(inst.metrics.Counter(metricSpansEmitted).Value()),
		MatchesDiscarded: int64(inst.metrics.Counter(metricMatchesDiscard).Value()),
		EventsProcessed:  int64(inst.metrics.Counter(metricEventsProcessed).Value()),
		RulesActive:      int64(inst.metrics.Counter(metricRulesActive).Value()),
	}
}

// startRun opens the tracez span covering one full Engine.Run pass.
func (inst *instrumentation) startRun(ctx context.Context, runID string) (context.Context, *tracez.ActiveSpan) {
	ctx, span := inst.tracer.StartSpan(ctx, "spanloom.run")
	span.SetTag("run_id", runID)
	return ctx, span
}

// now returns the instrumentation clock's current time, used to stamp
// diagnostic signals so tests can inject a fake clockz.Clock.
func (inst *instrumentation) now() time.Time {
	return inst.clock.Now()
}
