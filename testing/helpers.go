// Package testing provides fixture builders for exercising spanloom engines
// and rules without hand-assembling Event slices in every test.
package testing

import (
	"fmt"

	"github.com/zoobzio/spanloom"
)

// EventBuilder accumulates events in start order for a single test fixture.
type EventBuilder struct {
	events []spanloom.Event
}

// NewEventBuilder returns an empty EventBuilder.
func NewEventBuilder() *EventBuilder {
	return &EventBuilder{}
}

// Add appends e and returns the builder for chaining.
func (b *EventBuilder) Add(e spanloom.Event) *EventBuilder {
	b.events = append(b.events, e)
	return b
}

// Start appends a minimal start-side event at ts with the given name,
// process, and thread. Use Add for anything needing argument values or an
// explicit opcode.
func (b *EventBuilder) Start(name, process, thread string, ts int64) *EventBuilder {
	return b.Add(spanloom.Event{Name: name, Process: process, Thread: thread, Start: ts})
}

// Stop appends a minimal stop-side event at ts.
func (b *EventBuilder) Stop(name, process, thread string, ts int64) *EventBuilder {
	return b.Add(spanloom.Event{Name: name, Process: process, Thread: thread, Start: ts})
}

// Build returns the accumulated events.
func (b *EventBuilder) Build() []spanloom.Event {
	return b.events
}

// CollectingSink is a spanloom.Sink that records every appended span in
// memory, for assertions against Spans() after a run.
type CollectingSink struct {
	spans    []spanloom.Span
	finalize int
}

// NewCollectingSink returns an empty CollectingSink.
func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

// Append implements spanloom.Sink.
func (s *CollectingSink) Append(span spanloom.Span) {
	s.spans = append(s.spans, span)
}

// Finalize implements spanloom.Sink.
func (s *CollectingSink) Finalize() {
	s.finalize++
}

// Len implements spanloom.Sink.
func (s *CollectingSink) Len() int { return len(s.spans) }

// At implements spanloom.Sink.
func (s *CollectingSink) At(i int) (spanloom.Span, error) {
	if i < 0 || i >= len(s.spans) {
		return spanloom.Span{}, fmt.Errorf("testing: span index %d out of range", i)
	}
	return s.spans[i], nil
}

// Spans returns every span appended so far, in append order.
func (s *CollectingSink) Spans() []spanloom.Span { return s.spans }

// Finalized reports whether Finalize has been called at least once.
func (s *CollectingSink) Finalized() bool { return s.finalize > 0 }

// NamesOf returns the Name field of each span in spans, in order - a common
// shorthand for asserting which spans a run produced.
func NamesOf(spans []spanloom.Span) []string {
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name
	}
	return names
}
