package spanloom

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// LoadRuleSetFromYAML parses a YAML byte slice into a RuleSetSchema.
func LoadRuleSetFromYAML(data []byte) (RuleSetSchema, error) {
	var s RuleSetSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return RuleSetSchema{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return s, nil
}

// LoadRuleSetFromJSON parses a JSON byte slice into a RuleSetSchema.
func LoadRuleSetFromJSON(data []byte) (RuleSetSchema, error) {
	var s RuleSetSchema
	if err := json.Unmarshal(data, &s); err != nil {
		return RuleSetSchema{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return s, nil
}

// RuleSetSchema is the serializable counterpart to an ordered []Rule. Load
// it via LoadRuleSetFromYAML/JSON, validate it, then compile it with Build.
// Rule order in the slice is preserved by Build and is significant per
// spec.md §4.3.
type RuleSetSchema struct {
	Rules []RuleSchema `json:"rules" yaml:"rules"`
}

// FieldPairSchema is the serializable form of FieldPair.
type FieldPairSchema struct {
	StartArgKey string `json:"start_arg_key" yaml:"start_arg_key"`
	StopArgKey  string `json:"stop_arg_key" yaml:"stop_arg_key"`
}

// RuleSchema is the serializable form of DefaultRuleConfig.
type RuleSchema struct {
	// StartName and StopName are regular expressions matched against
	// Event.Name. Either may be empty if the corresponding opcode field
	// is set instead.
	StartName string `json:"start_name,omitempty" yaml:"start_name,omitempty"`
	StopName  string `json:"stop_name,omitempty" yaml:"stop_name,omitempty"`

	// StartOpCode and StopOpCode are compared against Event.Opcode().
	StartOpCode string `json:"start_opcode,omitempty" yaml:"start_opcode,omitempty"`
	StopOpCode  string `json:"stop_opcode,omitempty" yaml:"stop_opcode,omitempty"`

	// KeyFields selects which of "event_name", "opcode", "process",
	// "thread" participate in this rule's EventKey.
	KeyFields []string `json:"key_fields,omitempty" yaml:"key_fields,omitempty"`

	// AllowRecursion enables nested starts (Push) instead of single-slot
	// replacement (Replace).
	AllowRecursion bool `json:"allow_recursion,omitempty" yaml:"allow_recursion,omitempty"`

	// StopBehavior is one of "on_match", "on_action", "on_process",
	// "never". Defaults to "on_action" if empty.
	StopBehavior string `json:"stop_behavior,omitempty" yaml:"stop_behavior,omitempty"`

	// AdditionalFields extends the key with argument-value pairs beyond
	// the fixed KeyFields set.
	AdditionalFields []FieldPairSchema `json:"additional_fields,omitempty" yaml:"additional_fields,omitempty"`
}

// Validate checks that every rule schema is well formed enough to attempt
// construction: required predicates are present and enum strings are
// recognized. It does not compile regular expressions - that happens in
// Build, where a bad pattern is reported with its rule index.
func (s RuleSetSchema) Validate() error {
	for i, r := range s.Rules {
		if r.StartName == "" && r.StartOpCode == "" {
			return fmt.Errorf("rules[%d]: %w", i, ErrNoStartPredicate)
		}
		if r.StopName == "" && r.StopOpCode == "" {
			return fmt.Errorf("rules[%d]: %w", i, ErrNoStopPredicate)
		}
		for _, f := range r.KeyFields {
			if _, err := parseKeyField(f); err != nil {
				return fmt.Errorf("rules[%d]: %w", i, err)
			}
		}
		if r.StopBehavior != "" {
			if _, err := parseStopBehavior(r.StopBehavior); err != nil {
				return fmt.Errorf("rules[%d]: %w", i, err)
			}
		}
		for j, p := range r.AdditionalFields {
			if p.StartArgKey == "" || p.StopArgKey == "" {
				return fmt.Errorf("rules[%d].additional_fields[%d]: %w", i, j, ErrEmptyFieldPair)
			}
		}
	}
	return nil
}

func parseKeyField(s string) (KeyField, error) {
	switch s {
	case "event_name":
		return KeyFieldEventName, nil
	case "opcode":
		return KeyFieldOpCode, nil
	case "process":
		return KeyFieldProcess, nil
	case "thread":
		return KeyFieldThread, nil
	default:
		return 0, fmt.Errorf("key field %q: %w", s, ErrUnknownKeyField)
	}
}

func parseStopBehavior(s string) (StopBehavior, error) {
	switch s {
	case "", "on_action":
		return StopOnAction, nil
	case "on_match":
		return StopOnMatch, nil
	case "on_process":
		return StopOnProcess, nil
	case "never":
		return StopNever, nil
	default:
		return 0, fmt.Errorf("stop behavior %q: %w", s, ErrUnknownStopBehavior)
	}
}
