package spanloom

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// String renders Stats as a small aligned table, for debug output - not a
// stable machine-readable format. Hosts that want that should read the
// fields directly or encode them themselves.
func (s Stats) String() string {
	var b strings.Builder
	table := tablewriter.NewTable(&b)
	table.Header([]string{"metric", "value"})
	table.Append([]string{"events_processed", strconv.FormatInt(s.EventsProcessed, 10)})
	table.Append([]string{"rules_active", strconv.FormatInt(s.RulesActive, 10)})
	table.Append([]string{color.GreenString("spans_emitted"), strconv.FormatInt(s.SpansEmitted, 10)})
	table.Append([]string{color.YellowString("matches_discarded"), strconv.FormatInt(s.MatchesDiscarded, 10)})
	table.Render()
	return b.String()
}

// Explain returns a human-readable summary of the engine's current
// self-instrumentation state, suitable for a debug log line or CLI
// diagnostic print - never parsed by spanloom itself.
func (e *Engine) Explain() string {
	return e.Stats().String()
}
