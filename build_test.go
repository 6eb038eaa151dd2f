package spanloom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/capitan"
)

func TestBuild_CompilesRuleSet(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{
		{
			StartName:      "^A_Start$",
			StopName:       "^A_Stop$",
			KeyFields:      []string{"process", "thread"},
			AllowRecursion: true,
		},
	}}

	rules, err := Build(schema)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	events := []Event{
		{Name: "A_Start", Process: "P", Thread: "T", Start: 10},
		{Name: "A_Start", Process: "P", Thread: "T", Start: 20},
		{Name: "A_Stop", Process: "P", Thread: "T", Start: 30},
		{Name: "A_Stop", Process: "P", Thread: "T", Start: 40},
	}
	spans := runEngine(t, rules, events)
	require.Len(t, spans, 2)
	assert.Equal(t, int64(20), spans[0].Start)
	assert.Equal(t, int64(10), spans[1].Start)
}

func TestBuild_PropagatesRuleIndexOnError(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{
		{StartName: "^A_Start$", StopName: "^A_Stop$"},
		{StartName: "(", StopName: "^B_Stop$"}, // invalid regex
	}}
	_, err := Build(schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRegex)
	assert.Contains(t, err.Error(), "rules[1]")
}

func TestBuild_RejectsInvalidSchema(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{{StopName: "X"}}}
	_, err := Build(schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStartPredicate)
}

func TestBuildWithDiagnostics_EmitsRuleConstructed(t *testing.T) {
	schema := RuleSetSchema{Rules: []RuleSchema{
		{StartName: "^A_Start$", StopName: "^A_Stop$"},
	}}
	diag := newDiagnostics()
	var gotSignal bool
	stop := diag.Observe(func(_ context.Context, e *capitan.Event) {
		if e.Signal().Name() == SignalRuleConstructed.Name() {
			gotSignal = true
		}
	})
	defer stop()

	_, err := BuildWithDiagnostics(schema, diag, nil)
	require.NoError(t, err)
	assert.True(t, gotSignal)
}
