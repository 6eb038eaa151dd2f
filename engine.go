package spanloom

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

// EngineOptions configures an Engine beyond its events/rules/sink.
type EngineOptions struct {
	// ValidateOrder, when true, makes Run check once up front that every
	// event's Start timestamp is non-decreasing across the sequence.
	// Disabled by default: the upstream producer already guarantees this
	// (spec.md §6), and a full pre-scan defeats the engine's one-pass
	// budget for hosts that already know their input is sorted.
	ValidateOrder bool

	// Clock supplies the wall-clock time attached to diagnostic signals.
	// Defaults to clockz.Real(); tests can inject a fake clock for
	// deterministic diagnostic timestamps.
	Clock clockz.Clock
}

// Engine is the top-level driver described by spec.md §4.3: it walks a
// finalized input sequence once, offering each event to every RuleContext
// in order, honoring each rule's StopBehavior to decide whether later
// rules see the same event.
type Engine struct {
	contexts []*RuleContext
	sink     Sink
	opts     EngineOptions
	inst     *instrumentation
	diag     *diagnostics
}

// NewEngine constructs an Engine from an ordered list of rules and an
// output sink. Rule order is significant: it is the only way to express
// "try this specialization before the fallback" (spec.md §4.3).
func NewEngine(rules []Rule, sink Sink, opts EngineOptions) *Engine {
	e := &Engine{
		sink: sink,
		opts: opts,
		inst: newInstrumentation(opts.Clock),
		diag: newDiagnostics(),
	}
	for i, r := range rules {
		e.contexts = append(e.contexts, NewRuleContext(r, i, e.diag, e.inst.now, func(span Span) {
			e.inst.emitSpan(context.Background(), span)
		}))
	}
	e.inst.recordRulesActive(len(rules))
	return e
}

// Stats returns a snapshot of the engine's self-instrumentation counters.
func (e *Engine) Stats() Stats {
	return e.inst.snapshot()
}

// OnSpan registers a callback invoked synchronously as each span is
// appended to the sink, independent of the sink itself (e.g. for a host's
// live progress UI). See SPEC_FULL.md §12.
func (e *Engine) OnSpan(fn func(context.Context, Span) error) func() {
	return e.inst.OnSpan(fn)
}

// Observe registers cb to receive this engine's diagnostic signals
// (SignalUnmatchedStop, SignalUnmatchedStart). Returns a function that
// stops the observation.
func (e *Engine) Observe(cb func(ctx context.Context, signal string, fields map[string]string)) func() {
	return e.diag.Observe(adaptDiagnosticCallback(cb))
}

// Run walks events in index order exactly once, offering each event to
// every RuleContext in list order, and finalizes the sink when done.
//
// A cancellation requested before Run starts aborts immediately with
// ctx.Err() and no output; the per-event loop itself never selects on
// ctx.Done() mid-pass (spec.md §5 - no suspension once a run starts).
func (e *Engine) Run(ctx context.Context, events []Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.opts.ValidateOrder {
		if err := validateMonotonic(events); err != nil {
			return err
		}
	}

	runID := uuid.New().String()
	ctx, span := e.inst.startRun(ctx, runID)
	defer span.Finish()

	for i := range events {
		for _, rc := range e.contexts {
			if rc.processEvent(ctx, runID, events, i, e.sink) == verdictStop {
				break
			}
		}
	}
	e.inst.recordEventsProcessed(len(events))

	e.reportUnmatchedStarts(ctx, runID)
	e.sink.Finalize()
	return nil
}

// reportUnmatchedStarts emits SignalUnmatchedStart once per pending start
// left over in any RuleContext at end-of-run - spec.md §7/§8: not an
// error, but worth surfacing for operational visibility.
func (e *Engine) reportUnmatchedStarts(ctx context.Context, runID string) {
	for ruleIdx, rc := range e.contexts {
		for _, idx := range rc.pendingIndices() {
			e.inst.recordDiscard()
			e.diag.emit(ctx, runID, e.inst.now(), SignalUnmatchedStart,
				diagRuleIndex.Field(ruleIdx),
				diagEventIdx.Field(idx),
			)
		}
	}
}

func validateMonotonic(events []Event) error {
	for i := 1; i < len(events); i++ {
		if events[i].Start < events[i-1].Start {
			return fmt.Errorf("spanloom: event %d starts at %d, before event %d at %d: %w",
				i, events[i].Start, i-1, events[i-1].Start, ErrNonMonotonicTimestamp)
		}
	}
	return nil
}
