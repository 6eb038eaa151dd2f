package spanloom

import (
	"context"
	"fmt"

	"github.com/zoobzio/clockz"
)

// Build compiles a validated RuleSetSchema into an ordered []Rule, ready to
// pass to NewEngine. It calls Validate internally, so callers need not call
// it separately, but doing so first gives a cheaper failure path when
// loading many rule sets.
//
// Build attaches no diagnostics bus, so it emits no SignalRuleConstructed
// signals; use BuildWithDiagnostics for that.
func Build(schema RuleSetSchema) ([]Rule, error) {
	return BuildWithDiagnostics(schema, nil, clockz.Real())
}

// BuildWithDiagnostics is Build with an explicit diagnostics bus and clock:
// every constructed rule emits SignalRuleConstructed on diag, tagged with
// its index in the schema and stamped with clock.Now(). A nil diag drops
// the signals; a nil clock falls back to clockz.Real().
func BuildWithDiagnostics(schema RuleSetSchema, diag *diagnostics, clock clockz.Clock) ([]Rule, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockz.Real()
	}

	rules := make([]Rule, 0, len(schema.Rules))
	for i, rs := range schema.Rules {
		rule, err := buildOne(rs)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules = append(rules, rule)
		diag.emit(context.Background(), "build", clock.Now(), SignalRuleConstructed, diagRuleIndex.Field(i))
	}
	return rules, nil
}

func buildOne(rs RuleSchema) (*DefaultRule, error) {
	var keyFields KeyField
	for _, f := range rs.KeyFields {
		kf, err := parseKeyField(f)
		if err != nil {
			return nil, err
		}
		keyFields |= kf
	}

	behavior := StopOnAction
	if rs.StopBehavior != "" {
		b, err := parseStopBehavior(rs.StopBehavior)
		if err != nil {
			return nil, err
		}
		behavior = b
	}

	pairs := make([]FieldPair, 0, len(rs.AdditionalFields))
	for _, p := range rs.AdditionalFields {
		pairs = append(pairs, FieldPair{StartArgKey: p.StartArgKey, StopArgKey: p.StopArgKey})
	}

	return NewDefaultRule(DefaultRuleConfig{
		StartNameRE:     rs.StartName,
		StopNameRE:      rs.StopName,
		StartOpCode:     rs.StartOpCode,
		StopOpCode:      rs.StopOpCode,
		KeyFields:       keyFields,
		AllowRecursion:  rs.AllowRecursion,
		Behavior:        behavior,
		AdditionalPairs: pairs,
	})
}
