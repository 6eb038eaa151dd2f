package spanloom

// Action is the classification a Rule assigns to one Event.
type Action int

const (
	// ActionNone means the event is irrelevant to this rule.
	ActionNone Action = iota
	// ActionIgnore means the event is recognized but intentionally skipped.
	ActionIgnore
	// ActionPush means the event is a start; push its index for the key.
	ActionPush
	// ActionReplace means the event is a start in a non-recursive rule:
	// discard any existing pending start for the key, then push this one.
	ActionReplace
	// ActionPopDiscard means the event is a stop that removes the top
	// pending start for its key without emitting a span.
	ActionPopDiscard
	// ActionPopProcess means the event is a stop that should be paired
	// with the top pending start for its key and emit a span.
	ActionPopProcess
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionIgnore:
		return "Ignore"
	case ActionPush:
		return "Push"
	case ActionReplace:
		return "Replace"
	case ActionPopDiscard:
		return "PopDiscard"
	case ActionPopProcess:
		return "PopProcess"
	default:
		return "Unknown"
	}
}

// StopBehavior controls whether, after a rule acts on an event, subsequent
// rules in the driver's list also see that event. Values are ordered by
// strictness: OnMatch < OnAction < OnProcess < Never.
type StopBehavior int

const (
	// StopOnMatch stops the driver's per-event rule loop as soon as this
	// rule produces any recognized outcome, including a failed match.
	StopOnMatch StopBehavior = iota
	// StopOnAction stops the loop on Push/Replace/PopDiscard outcomes.
	StopOnAction
	// StopOnProcess stops the loop only when a PopProcess actually pairs.
	StopOnProcess
	// StopNever never stops the loop - later rules always see the event.
	StopNever
)

func (sb StopBehavior) String() string {
	switch sb {
	case StopOnMatch:
		return "OnMatch"
	case StopOnAction:
		return "OnAction"
	case StopOnProcess:
		return "OnProcess"
	case StopNever:
		return "Never"
	default:
		return "Unknown"
	}
}

// strictlyLooserThan reports whether sb is a strictly looser threshold than
// other (later in the OnMatch < OnAction < OnProcess < Never ordering), i.e.
// a rule with behavior sb lets the driver continue past an outcome whose
// threshold is other.
func (sb StopBehavior) strictlyLooserThan(other StopBehavior) bool {
	return sb > other
}

// Rule is a strategy that classifies events relative to one correlation
// scheme and builds spans from matched pairs.
type Rule interface {
	// Examine classifies event relative to this rule. When the action
	// requires a key (Push, Replace, PopDiscard, PopProcess) the returned
	// key is non-nil; otherwise it is nil.
	Examine(event Event) (Action, *EventKey)

	// Process builds a span event from a matched start/stop pair. Callers
	// must ensure start precedes stop in the input sequence.
	Process(start, stop Event) Span

	// StopBehavior reports the threshold the driver uses to decide
	// whether later rules also see an event this rule has acted on.
	StopBehavior() StopBehavior
}

// Span is an Event synthesized by pairing a start and a stop. Its Start
// field is the start event's Start; its End field is the stop event's
// Start; its Name is the start event's name with a trailing "_Start" or
// "_Stop" suffix removed.
type Span = Event
