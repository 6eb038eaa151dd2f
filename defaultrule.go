package spanloom

import (
	"fmt"
	"regexp"
)

// FieldPair names a start-side and stop-side argument key whose values
// (drawn from the matching side of the event) extend an EventKey beyond
// the fixed EventName/OpCode/Process/Thread fields.
type FieldPair struct {
	StartArgKey string
	StopArgKey  string
}

// DefaultRuleConfig configures a DefaultRule. At least one of StartNameRE
// or StartOpCode must be set, and likewise for the stop side; NewDefaultRule
// fails construction otherwise.
type DefaultRuleConfig struct {
	StartNameRE string
	StopNameRE  string
	StartOpCode string // compared against Event.Opcode(); "" means unset
	StopOpCode  string

	KeyFields       KeyField
	AllowRecursion  bool
	Behavior        StopBehavior
	AdditionalPairs []FieldPair
}

// DefaultRule is the configurable rule described by spec.md §4.1: it
// classifies events via regex and/or opcode predicates on their start and
// stop sides, and keys pending starts using a caller-selected subset of
// Event fields plus any configured additional argument pairs.
type DefaultRule struct {
	startRE  *regexp.Regexp
	stopRE   *regexp.Regexp
	startOp  string
	stopOp   string
	hasStartOp bool
	hasStopOp  bool

	keyFields KeyField
	recursive bool
	behavior  StopBehavior
	pairs     []FieldPair
}

// NewDefaultRule validates cfg and builds a DefaultRule from it.
func NewDefaultRule(cfg DefaultRuleConfig) (*DefaultRule, error) {
	if cfg.StartNameRE == "" && cfg.StartOpCode == "" {
		return nil, ErrNoStartPredicate
	}
	if cfg.StopNameRE == "" && cfg.StopOpCode == "" {
		return nil, ErrNoStopPredicate
	}
	for i, p := range cfg.AdditionalPairs {
		if p.StartArgKey == "" || p.StopArgKey == "" {
			return nil, fmt.Errorf("additional_pairs[%d]: %w", i, ErrEmptyFieldPair)
		}
	}

	r := &DefaultRule{
		keyFields: cfg.KeyFields,
		recursive: cfg.AllowRecursion,
		behavior:  cfg.Behavior,
		pairs:     cfg.AdditionalPairs,
	}

	if cfg.StartNameRE != "" {
		re, err := regexp.Compile(cfg.StartNameRE)
		if err != nil {
			return nil, fmt.Errorf("start name regex %q: %w: %v", cfg.StartNameRE, ErrInvalidRegex, err)
		}
		r.startRE = re
	}
	if cfg.StopNameRE != "" {
		re, err := regexp.Compile(cfg.StopNameRE)
		if err != nil {
			return nil, fmt.Errorf("stop name regex %q: %w: %v", cfg.StopNameRE, ErrInvalidRegex, err)
		}
		r.stopRE = re
	}
	if cfg.StartOpCode != "" {
		r.startOp = cfg.StartOpCode
		r.hasStartOp = true
	}
	if cfg.StopOpCode != "" {
		r.stopOp = cfg.StopOpCode
		r.hasStopOp = true
	}

	return r, nil
}

// StopBehavior implements Rule.
func (r *DefaultRule) StopBehavior() StopBehavior { return r.behavior }

// Examine implements Rule, testing start predicates before stop predicates
// per spec.md §9 open question 4 ("reference behavior tests start first").
func (r *DefaultRule) Examine(e Event) (Action, *EventKey) {
	if r.matchesStart(e) && r.argKeysPresent(e, true) {
		key := r.buildKey(e, true)
		if r.recursive {
			return ActionPush, key
		}
		return ActionReplace, key
	}
	if r.matchesStop(e) && r.argKeysPresent(e, false) {
		key := r.buildKey(e, false)
		return ActionPopProcess, key
	}
	return ActionNone, nil
}

func (r *DefaultRule) matchesStart(e Event) bool {
	if r.startRE != nil && !r.startRE.MatchString(e.Name) {
		return false
	}
	if r.hasStartOp && e.Opcode() != r.startOp {
		return false
	}
	return true
}

func (r *DefaultRule) matchesStop(e Event) bool {
	if r.stopRE != nil && !r.stopRE.MatchString(e.Name) {
		return false
	}
	if r.hasStopOp && e.Opcode() != r.stopOp {
		return false
	}
	return true
}

// argKeysPresent reports whether every configured additional-pair arg key
// on the matching side is present in e.ArgKeys.
func (r *DefaultRule) argKeysPresent(e Event, start bool) bool {
	for _, p := range r.pairs {
		key := p.StopArgKey
		if start {
			key = p.StartArgKey
		}
		if !hasArgKey(e, key) {
			return false
		}
	}
	return true
}

func hasArgKey(e Event, key string) bool {
	for _, k := range e.ArgKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (r *DefaultRule) buildKey(e Event, start bool) *EventKey {
	k := &EventKey{}
	if r.keyFields&KeyFieldEventName != 0 {
		k.EventName = strPtr(e.Name)
	}
	if r.keyFields&KeyFieldOpCode != 0 {
		k.OpCode = strPtr(e.Opcode())
	}
	if r.keyFields&KeyFieldProcess != 0 {
		k.Process = strPtr(e.Process)
	}
	if r.keyFields&KeyFieldThread != 0 {
		k.Thread = strPtr(e.Thread)
	}
	for _, p := range r.pairs {
		argKey := p.StopArgKey
		if start {
			argKey = p.StartArgKey
		}
		k.Additional = append(k.Additional, strPtr(e.ArgValue(argKey)))
	}
	return k
}

// Process implements Rule, building a span from a matched pair.
func (r *DefaultRule) Process(start, stop Event) Span {
	return Span{
		Name:      stripStartStop(start.Name),
		Type:      start.Type,
		Category:  start.Category,
		Process:   start.Process,
		Thread:    start.Thread,
		Start:     start.Start,
		End:       stop.Start,
		ArgSetID:  start.ArgSetID,
		ArgKeys:   start.ArgKeys,
		ArgValues: start.ArgValues,
	}
}

const (
	suffixStart = "_Start"
	suffixStop  = "_Stop"
)

// stripStartStop removes a trailing "_Start" or "_Stop" suffix from name.
//
// The source implementation this engine is modeled on strips one character
// too many (len(suffix)+1), quietly truncating the last character of the
// real event name whenever a suffix is present. This rewrite fixes that:
// it strips exactly len(suffix) characters. See DESIGN.md / SPEC_FULL.md
// §9 item 1 for the reasoning.
func stripStartStop(name string) string {
	switch {
	case hasSuffix(name, suffixStart):
		return name[:len(name)-len(suffixStart)]
	case hasSuffix(name, suffixStop):
		return name[:len(name)-len(suffixStop)]
	default:
		return name
	}
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
