package spanloom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuleSetFromYAML(t *testing.T) {
	data := []byte(`
rules:
  - start_name: "^A_Start$"
    stop_name: "^A_Stop$"
    key_fields: ["process", "thread"]
    allow_recursion: true
    stop_behavior: "on_process"
    additional_fields:
      - start_arg_key: frameId
        stop_arg_key: frameId
`)
	schema, err := LoadRuleSetFromYAML(data)
	require.NoError(t, err)
	require.Len(t, schema.Rules, 1)

	r := schema.Rules[0]
	assert.Equal(t, "^A_Start$", r.StartName)
	assert.Equal(t, "^A_Stop$", r.StopName)
	assert.True(t, r.AllowRecursion)
	assert.Equal(t, "on_process", r.StopBehavior)
	assert.Equal(t, []string{"process", "thread"}, r.KeyFields)
	require.Len(t, r.AdditionalFields, 1)
	assert.Equal(t, "frameId", r.AdditionalFields[0].StartArgKey)
}

func TestLoadRuleSetFromJSON(t *testing.T) {
	data := []byte(`{"rules":[{"start_opcode":"1","stop_opcode":"2"}]}`)
	schema, err := LoadRuleSetFromJSON(data)
	require.NoError(t, err)
	require.Len(t, schema.Rules, 1)
	assert.Equal(t, "1", schema.Rules[0].StartOpCode)
}

func TestRuleSetSchema_Validate_MissingStartPredicate(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{{StopName: "X_Stop"}}}
	err := schema.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStartPredicate)
}

func TestRuleSetSchema_Validate_UnknownKeyField(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{{
		StartName: "A", StopName: "B",
		KeyFields: []string{"bogus"},
	}}}
	err := schema.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownKeyField)
}

func TestRuleSetSchema_Validate_UnknownStopBehavior(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{{
		StartName: "A", StopName: "B",
		StopBehavior: "bogus",
	}}}
	err := schema.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStopBehavior)
}

func TestRuleSetSchema_Validate_EmptyFieldPair(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{{
		StartName: "A", StopName: "B",
		AdditionalFields: []FieldPairSchema{{StartArgKey: "x"}},
	}}}
	err := schema.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyFieldPair)
}

func TestParseStopBehavior_DefaultsToOnAction(t *testing.T) {
	b, err := parseStopBehavior("")
	require.NoError(t, err)
	assert.Equal(t, StopOnAction, b)
}
