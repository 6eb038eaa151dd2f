package spanloom

import (
	"context"
	"time"
)

// outcome summarizes what a RuleContext actually did with one event, used
// to look up the continue/stop decision against the rule's StopBehavior.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeIgnore
	outcomeActed // Push, Replace, or a PopDiscard that removed a start
	outcomePaired
	outcomeUnmatched // PopProcess or PopDiscard found no pending start
)

// threshold maps an outcome to the StopBehavior threshold the driver
// compares against: the loop continues to later rules iff the rule's own
// StopBehavior is strictly looser than this threshold.
func (o outcome) threshold() (StopBehavior, bool) {
	switch o {
	case outcomeNone:
		return 0, false // always continue, no threshold to check
	case outcomeIgnore:
		return StopOnMatch, true
	case outcomeActed:
		return StopOnAction, true
	case outcomePaired:
		return StopOnProcess, true
	case outcomeUnmatched:
		return StopOnMatch, true
	default:
		return StopNever, true
	}
}

// verdict is what RuleContext.processEvent returns to the driver.
type verdict int

const (
	verdictContinue verdict = iota
	verdictStop
)

// RuleContext wraps one Rule with the mutable per-key stack state needed
// to pair starts with stops across one engine run.
type RuleContext struct {
	rule      Rule
	ruleIndex int
	stacks    map[string][]int // EventKey.hashKey() -> LIFO of input indices

	onSpan func(Span)

	diag  *diagnostics
	clock func() time.Time
}

// NewRuleContext creates a RuleContext for rule, identified by ruleIndex
// within its engine's rule list for diagnostic field purposes. onSpan, if
// non-nil, is invoked synchronously whenever a PopProcess pairing emits a
// span, before the span is appended to the shared sink. diag may be nil,
// in which case this RuleContext emits no diagnostic signals; clock
// supplies the timestamp attached to any signal it does emit.
func NewRuleContext(rule Rule, ruleIndex int, diag *diagnostics, clock func() time.Time, onSpan func(Span)) *RuleContext {
	return &RuleContext{
		rule:      rule,
		ruleIndex: ruleIndex,
		stacks:    make(map[string][]int),
		onSpan:    onSpan,
		diag:      diag,
		clock:     clock,
	}
}

// processEvent examines events[index] against the wrapped rule, updates
// the per-key stack, appends any emitted span to sink, and reports whether
// the driver should continue to the next rule for this index. ctx and
// runID are threaded through to any diagnostic signal this call emits.
func (rc *RuleContext) processEvent(ctx context.Context, runID string, events []Event, index int, sink Sink) verdict {
	action, key := rc.rule.Examine(events[index])

	var o outcome
	switch action {
	case ActionNone:
		o = outcomeNone
	case ActionIgnore:
		o = outcomeIgnore
	case ActionPush:
		rc.push(key, index)
		o = outcomeActed
	case ActionReplace:
		rc.replace(key, index)
		o = outcomeActed
	case ActionPopDiscard:
		if rc.popDiscard(key) {
			o = outcomeActed
		} else {
			o = outcomeUnmatched
			rc.reportUnmatchedStop(ctx, runID, index)
		}
	case ActionPopProcess:
		if startIdx, ok := rc.pop(key); ok {
			span := rc.rule.Process(events[startIdx], events[index])
			if rc.onSpan != nil {
				rc.onSpan(span)
			}
			sink.Append(span)
			o = outcomePaired
		} else {
			o = outcomeUnmatched
			rc.reportUnmatchedStop(ctx, runID, index)
		}
	}

	threshold, ok := o.threshold()
	if !ok {
		return verdictContinue
	}
	if rc.rule.StopBehavior().strictlyLooserThan(threshold) {
		return verdictContinue
	}
	return verdictStop
}

// reportUnmatchedStop emits SignalUnmatchedStop for a PopProcess/PopDiscard
// that found no pending start to pair with - the stop half of the unmatched
// accounting engine.go's reportUnmatchedStarts does for leftover starts.
func (rc *RuleContext) reportUnmatchedStop(ctx context.Context, runID string, index int) {
	if rc.diag == nil {
		return
	}
	var now time.Time
	if rc.clock != nil {
		now = rc.clock()
	}
	rc.diag.emit(ctx, runID, now, SignalUnmatchedStop,
		diagRuleIndex.Field(rc.ruleIndex),
		diagEventIdx.Field(index),
	)
}

func (rc *RuleContext) push(key *EventKey, index int) {
	h := key.hashKey()
	rc.stacks[h] = append(rc.stacks[h], index)
}

func (rc *RuleContext) replace(key *EventKey, index int) {
	h := key.hashKey()
	if stack := rc.stacks[h]; len(stack) > 0 {
		rc.stacks[h] = stack[:len(stack)-1]
	}
	rc.stacks[h] = append(rc.stacks[h], index)
}

// popDiscard removes the top pending start for key without emitting,
// reporting whether one existed. Implements the spec's "pop one"
// interpretation of PopProcess/PopDiscard - see SPEC_FULL.md §9 item 2.
func (rc *RuleContext) popDiscard(key *EventKey) bool {
	h := key.hashKey()
	stack := rc.stacks[h]
	if len(stack) == 0 {
		return false
	}
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(rc.stacks, h)
	} else {
		rc.stacks[h] = stack
	}
	return true
}

// pop removes and returns the top pending start index for key.
func (rc *RuleContext) pop(key *EventKey) (int, bool) {
	h := key.hashKey()
	stack := rc.stacks[h]
	if len(stack) == 0 {
		return 0, false
	}
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(rc.stacks, h)
	} else {
		rc.stacks[h] = stack
	}
	return top, true
}

// pendingCount returns the total number of pending start indices left
// across all keys. End-of-run diagnostics use pendingIndices instead.
func (rc *RuleContext) pendingCount() int {
	n := 0
	for _, s := range rc.stacks {
		n += len(s)
	}
	return n
}

// pendingIndices returns every still-pending start index, across all
// keys, in no particular order.
func (rc *RuleContext) pendingIndices() []int {
	var out []int
	for _, s := range rc.stacks {
		out = append(out, s...)
	}
	return out
}
