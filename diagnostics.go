package spanloom

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
)

// Diagnostic signals emitted during a run. None of these represent errors:
// spec.md §7 classifies unmatched stops/starts as expected outcomes of
// real, truncated traces, not failures. They exist purely for operational
// visibility, mirroring the teacher's internalObserver/SignalTraceExpired
// pattern (see DESIGN.md).
var (
	// SignalUnmatchedStop fires when a PopProcess/PopDiscard found no
	// pending start for its key.
	SignalUnmatchedStop = capitan.NewSignal("spanloom:unmatched_stop", "stop event had no pending start to pair with")

	// SignalUnmatchedStart fires once per pending start left over at
	// Finalize - a start that never saw a matching stop.
	SignalUnmatchedStart = capitan.NewSignal("spanloom:unmatched_start", "start event was never matched by a stop")

	// SignalRuleConstructed fires once per rule successfully compiled by
	// Build, for audit visibility into what configuration a run used.
	SignalRuleConstructed = capitan.NewSignal("spanloom:rule_constructed", "rule compiled from schema")
)

var (
	diagRuleIndex  = capitan.NewIntKey("rule_index")
	diagEventIdx   = capitan.NewIntKey("event_index")
	diagRunID      = capitan.NewStringKey("run_id")
	diagObservedAt = capitan.NewTimeKey("observed_at")
)

// diagnostics wraps a private capitan bus carrying the signals above. A nil
// *diagnostics drops every signal, which is the zero-configuration default:
// match failures stay silent unless a host opts into observing them.
type diagnostics struct {
	bus *capitan.Capitan
}

func newDiagnostics() *diagnostics {
	return &diagnostics{bus: capitan.New()}
}

// Observe registers cb to receive every diagnostic signal emitted by this
// engine's runs. Returns a function that stops the observation.
func (d *diagnostics) Observe(cb capitan.EventCallback) func() {
	if d == nil {
		return func() {}
	}
	obs := d.bus.Observe(cb)
	return func() { obs.Close() }
}

// emit publishes signal with runID and observedAt attached, plus whatever
// caller-supplied fields identify the event/rule involved. observedAt comes
// from the engine's instrumentation clock (instrumentation.now), which lets
// tests inject a fake clockz.Clock and assert on deterministic timestamps.
func (d *diagnostics) emit(ctx context.Context, runID string, observedAt time.Time, signal capitan.Signal, fields ...capitan.Field) {
	if d == nil {
		return
	}
	fields = append(fields, diagRunID.Field(runID), diagObservedAt.Field(observedAt))
	d.bus.Emit(ctx, signal, fields...)
}

// adaptDiagnosticCallback bridges the simple map[string]string callback
// shape Engine.Observe exposes to callers down to a capitan.EventCallback.
func adaptDiagnosticCallback(cb func(ctx context.Context, signal string, fields map[string]string)) capitan.EventCallback {
	return func(ctx context.Context, e *capitan.Event) {
		fields := make(map[string]string, len(e.Fields()))
		for _, f := range e.Fields() {
			fields[f.Key().Name()] = fieldToString(f)
		}
		cb(ctx, e.Signal().Name(), fields)
	}
}

func fieldToString(f capitan.Field) string {
	switch gf := f.(type) {
	case capitan.GenericField[string]:
		return gf.Get()
	case capitan.GenericField[int]:
		return fmt.Sprintf("%d", gf.Get())
	case capitan.GenericField[time.Time]:
		return gf.Get().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", f)
	}
}
